package noa

import (
	"io"

	"github.com/entisia/go-noa/internal/source"
)

// Options control how entry payloads are decrypted.
type Options struct {
	// Password keys the BSHF decoder for protected entries. Absence is a
	// valid state: protected entries are then returned undecoded.
	Password string

	// BlockKey, when set, serves every entry payload through the
	// block-cipher stream convention used by the companion encrypted
	// archive format instead of the wrapped-record path.
	BlockKey []byte
}

// Archive is an opened container with its parsed entry list.
type Archive struct {
	src    source.ByteSource
	closer io.Closer
	opts   Options

	// Entries is the flat entry list in on-disk declaration order.
	Entries []*Entry

	// HasEncrypted is set when any entry (including skipped markers)
	// carries a non-zero encryption tag, so callers can decide whether a
	// password is worth resolving.
	HasEncrypted bool
}

// Open opens the container file at path and parses its index.
func Open(path string, opts Options) (*Archive, error) {
	f, err := source.OpenFile(path)
	if err != nil {
		return nil, err
	}
	a, err := New(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// New parses the container in src. The source stays owned by the caller.
func New(src source.ByteSource, opts Options) (*Archive, error) {
	a := &Archive{src: src, opts: opts}
	if err := a.readIndex(); err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases the underlying file when the archive owns one.
func (a *Archive) Close() error {
	if a.closer != nil {
		c := a.closer
		a.closer = nil
		return c.Close()
	}
	return nil
}

// Find returns the entry with the given path name, or nil.
func (a *Archive) Find(name string) *Entry {
	for _, e := range a.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// TotalSize sums the declared entry sizes.
func (a *Archive) TotalSize() int64 {
	var total int64
	for _, e := range a.Entries {
		total += e.Size
	}
	return total
}
