package noa

import "errors"

var (
	// ErrNotNOA means the byte source does not start with the container
	// magic and version. Callers probing several formats treat this as
	// "try the next one", not as a failure.
	ErrNotNOA = errors.New("noa: not an Entis archive")

	// ErrMalformed marks structurally invalid directory data; the archive
	// is treated as unreadable.
	ErrMalformed = errors.New("noa: malformed archive structure")

	// ErrPayloadTooLarge is returned for a wrapped payload whose declared
	// length exceeds what this platform can address.
	ErrPayloadTooLarge = errors.New("noa: payload length exceeds platform limits")

	// ErrTruncated means a decoder produced fewer bytes than the entry
	// declared.
	ErrTruncated = errors.New("noa: truncated entry payload")
)
