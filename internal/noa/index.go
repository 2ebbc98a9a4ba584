package noa

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/entisia/go-noa/internal/util"
)

const (
	headerSize       = 16 // magic + reserved + format version
	recordHeaderSize = 16 // 8-byte tag + 8-byte length
	formatVersion    = 0x02000400

	// Smallest possible entry record: 8-byte size, 4-byte attribute,
	// 4-byte encryption tag, 16-byte offset field, 4-byte extra length.
	entryRecordMinSize = 36

	attrSubdirectory = 0x10
	attrEndOfListing = 0x20
	attrPadding      = 0x40
	attrSubtypeMask  = 0x70

	// maxDirectoryDepth bounds recursion on hostile input. Real trees are
	// a handful of levels deep.
	maxDirectoryDepth = 64
)

// EncodeTypeBSHF is the only entry encryption scheme this package decodes.
const EncodeTypeBSHF = 0x40000000

var (
	containerMagic = []byte{'E', 'n', 't', 'i', 's', 0x1A, 0x00, 0x00}
	dirEntryMagic  = []byte("DirEntry")
	fileDataMagic  = []byte("filedata")
)

// readIndex verifies the container header and walks the directory tree into
// a flat entry list.
func (a *Archive) readIndex() error {
	header := make([]byte, headerSize)
	if n, _ := a.src.ReadAt(header, 0); n < headerSize {
		return ErrNotNOA
	}
	if !bytes.Equal(header[:8], containerMagic) {
		return ErrNotNOA
	}
	pos := 12
	if util.ReadUint32(header, &pos) != formatVersion {
		return ErrNotNOA
	}
	return a.readDirectory(0, "", 0)
}

// readDirectory parses the directory node of the region starting at base.
// The node proper sits past the region's 16-byte record header; entry
// offsets inside the node are relative to base.
func (a *Archive) readDirectory(base int64, prefix string, depth int) error {
	if depth > maxDirectoryDepth {
		return fmt.Errorf("%w: directory nesting deeper than %d", ErrMalformed, maxDirectoryDepth)
	}

	nodeOffset := base + recordHeaderSize
	head := make([]byte, recordHeaderSize)
	if n, _ := a.src.ReadAt(head, nodeOffset); n < recordHeaderSize {
		return fmt.Errorf("%w: short directory node at %#x", ErrMalformed, nodeOffset)
	}
	if !bytes.Equal(head[:8], dirEntryMagic) {
		return fmt.Errorf("%w: missing directory marker at %#x", ErrMalformed, nodeOffset)
	}
	pos := 8
	nodeLength := util.ReadInt64(head, &pos)
	if nodeLength <= 0 || nodeOffset+recordHeaderSize+nodeLength > a.src.Size() {
		return fmt.Errorf("%w: directory node length %d out of bounds", ErrMalformed, nodeLength)
	}

	node := make([]byte, nodeLength)
	if _, err := io.ReadFull(io.NewSectionReader(a.src, nodeOffset+recordHeaderSize, nodeLength), node); err != nil {
		return fmt.Errorf("%w: directory node read: %v", ErrMalformed, err)
	}

	pos = 0
	count := util.ReadUint32(node, &pos)
	for i := uint32(0); i < count; i++ {
		// Fixed-width record prefix: size, attribute, encryption tag,
		// 64-bit offset pair and the extra-data length.
		if len(node)-pos < entryRecordMinSize {
			return fmt.Errorf("%w: truncated entry record %d", ErrMalformed, i)
		}
		size64 := util.ReadUint64(node, &pos)
		attr := util.ReadUint32(node, &pos)
		encryption := util.ReadUint32(node, &pos)
		rel := util.ReadInt64(node, &pos)
		pos += 8 // upper half of the offset field, unused

		extraLen := int(util.ReadUint32(node, &pos))
		var extra []byte
		raw := util.ReadBytes(node, extraLen, &pos)
		if len(raw) != extraLen {
			return fmt.Errorf("%w: short extra data for entry %d", ErrMalformed, i)
		}
		if attr&attrSubtypeMask == 0 && extraLen > 0 {
			extra = append([]byte(nil), raw...)
		}

		if len(node)-pos < 4 {
			return fmt.Errorf("%w: missing name length for entry %d", ErrMalformed, i)
		}
		nameLen := int(util.ReadUint32(node, &pos))
		nameRaw := util.ReadBytes(node, nameLen, &pos)
		if len(nameRaw) != nameLen {
			return fmt.Errorf("%w: short name for entry %d", ErrMalformed, i)
		}
		name := decodeName(nameRaw)

		if encryption != 0 {
			a.HasEncrypted = true
		}

		offset := base + rel
		if offset < 0 {
			return fmt.Errorf("%w: negative offset for entry %d", ErrMalformed, i)
		}
		size := int64(uint32(size64)) // lower 4 bytes of the size field
		if offset+size > a.src.Size() {
			// Tolerate slightly malformed archives by clipping rather
			// than rejecting.
			size = a.src.Size() - offset
			if size < 0 {
				size = 0
			}
		}

		switch attr {
		case attrSubdirectory:
			if err := a.readDirectory(offset, prefix+name+"/", depth+1); err != nil {
				return err
			}
		case attrEndOfListing, attrPadding:
			// Listing terminator; remaining declared entries are ignored.
			return nil
		default:
			a.Entries = append(a.Entries, &Entry{
				Name:       prefix + name,
				Offset:     offset,
				Size:       size,
				Attribute:  attr,
				Encryption: encryption,
				Extra:      extra,
				Type:       classifyName(name),
			})
		}
	}
	return nil
}

// decodeName converts a CP932 name to UTF-8, falling back to the raw bytes
// when the transform rejects them.
func decodeName(raw []byte) string {
	raw = bytes.TrimRight(raw, "\x00")
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	name := string(raw)
	if err == nil {
		name = string(decoded)
	}
	return strings.ReplaceAll(name, "\\", "/")
}
