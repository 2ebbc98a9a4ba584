package source

import (
	"fmt"
	"os"
)

// File is a ByteSource backed by a file on disk.
type File struct {
	f    *os.File
	size int64
}

// OpenFile opens path as a random-access byte source.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}
	return &File{f: f, size: info.Size()}, nil
}

func (s *File) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *File) Size() int64 {
	return s.size
}

func (s *File) Close() error {
	return s.f.Close()
}
