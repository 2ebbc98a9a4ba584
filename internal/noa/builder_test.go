package noa

import (
	"bytes"
	"encoding/binary"
)

// Helpers assembling containers byte-for-byte for tests.

type entrySpec struct {
	size       uint32
	attr       uint32
	encryption uint32
	rel        int64
	extra      []byte
	name       []byte
}

func buildHeader() []byte {
	var b bytes.Buffer
	b.Write(containerMagic)
	b.Write(make([]byte, 4)) // reserved
	binary.Write(&b, binary.LittleEndian, uint32(formatVersion))
	return b.Bytes()
}

func buildEntryRecord(e entrySpec) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, uint64(e.size))
	binary.Write(&b, binary.LittleEndian, e.attr)
	binary.Write(&b, binary.LittleEndian, e.encryption)
	binary.Write(&b, binary.LittleEndian, e.rel)
	b.Write(make([]byte, 8)) // upper half of the offset field
	binary.Write(&b, binary.LittleEndian, uint32(len(e.extra)))
	b.Write(e.extra)
	binary.Write(&b, binary.LittleEndian, uint32(len(e.name)))
	b.Write(e.name)
	return b.Bytes()
}

// buildDirNode writes the 16-byte node header plus count and records.
// declaredCount lets tests lie about the entry count; pass -1 to use the
// real number.
func buildDirNode(declaredCount int, entries ...entrySpec) []byte {
	var content bytes.Buffer
	if declaredCount < 0 {
		declaredCount = len(entries)
	}
	binary.Write(&content, binary.LittleEndian, uint32(declaredCount))
	for _, e := range entries {
		content.Write(buildEntryRecord(e))
	}

	var b bytes.Buffer
	b.Write(dirEntryMagic)
	binary.Write(&b, binary.LittleEndian, int64(content.Len()))
	b.Write(content.Bytes())
	return b.Bytes()
}

// wrapPayload builds a "filedata" record: tag + declared length + body.
func wrapPayload(declared uint64, body []byte) []byte {
	var b bytes.Buffer
	b.Write(fileDataMagic)
	binary.Write(&b, binary.LittleEndian, declared)
	b.Write(body)
	return b.Bytes()
}

// buildContainer concatenates the header, the root node, and trailing data
// regions. The root node lands at offset 16 as the parser expects.
func buildContainer(rootNode []byte, regions ...[]byte) []byte {
	out := append([]byte(nil), buildHeader()...)
	out = append(out, rootNode...)
	for _, r := range regions {
		out = append(out, r...)
	}
	return out
}
