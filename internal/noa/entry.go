package noa

import (
	"path"
	"strings"
)

// Entry describes one file inside the container. Entries are created during
// index parsing and are immutable afterwards; the archive owns the list for
// its lifetime.
type Entry struct {
	Name       string
	Offset     int64
	Size       int64
	Attribute  uint32
	Encryption uint32
	Extra      []byte
	Type       EntryType
}

// Encrypted reports whether the entry carries a non-zero encryption tag.
func (e *Entry) Encrypted() bool {
	return e.Encryption != 0
}

// EntryType is a coarse classification derived from the filename extension.
type EntryType uint8

const (
	TypeUnknown EntryType = iota
	TypeImage
	TypeSound
	TypeScript
	TypeArchive
)

func (t EntryType) String() string {
	switch t {
	case TypeImage:
		return "image"
	case TypeSound:
		return "sound"
	case TypeScript:
		return "script"
	case TypeArchive:
		return "archive"
	default:
		return "data"
	}
}

func classifyName(name string) EntryType {
	switch strings.ToLower(path.Ext(name)) {
	case ".eri", ".bmp", ".png", ".jpg", ".jpeg", ".gif":
		return TypeImage
	case ".mio", ".wav", ".ogg", ".mp3", ".mid":
		return TypeSound
	case ".cotopha", ".csx", ".cst", ".txt", ".ini":
		return TypeScript
	case ".noa", ".nhk", ".arc":
		return TypeArchive
	default:
		return TypeUnknown
	}
}
