package source

import "io"

// Bytes is an in-memory ByteSource, mainly for tests and small containers.
type Bytes struct {
	data []byte
}

func NewBytes(data []byte) *Bytes {
	return &Bytes{data: data}
}

func (s *Bytes) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.EOF
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Bytes) Size() int64 {
	return int64(len(s.data))
}
