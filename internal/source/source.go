package source

// ByteSource provides random access to a container's raw bytes.
type ByteSource interface {
	// ReadAt reads len(p) bytes starting at absolute offset off.
	// It follows the io.ReaderAt contract.
	ReadAt(p []byte, off int64) (int, error)

	// Size returns the total byte length of the source.
	Size() int64
}
