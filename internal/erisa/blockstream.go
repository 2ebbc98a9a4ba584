package erisa

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// CipherBlockSize is the unit of independent decryption. A read at any
// offset only ever decrypts the one or two blocks it touches.
const CipherBlockSize = 1024

const warmupRounds = 300

// CipherStream provides seekable, read-only decrypted access to an
// encrypted region of a byte source. Block keystreams depend only on the
// block index and the caller's key; there is no per-block on-disk header.
//
// A CipherStream owns its cached block and position and must not be shared
// across goroutines, but independent streams over the same source are safe
// since the source is never written.
type CipherStream struct {
	src  io.ReaderAt
	base int64 // region start within src
	size int64 // region length
	key  []byte

	pos int64

	block    [CipherBlockSize]byte
	blockOff int64 // region offset of the cached block, -1 when empty
	blockLen int
}

// NewCipherStream wraps the [base, base+size) region of src.
func NewCipherStream(src io.ReaderAt, base, size int64, key []byte) *CipherStream {
	return &CipherStream{
		src:      src,
		base:     base,
		size:     size,
		key:      append([]byte(nil), key...),
		blockOff: -1,
	}
}

// Size returns the region's declared byte length.
func (s *CipherStream) Size() int64 {
	return s.size
}

// Read copies decrypted bytes from the current position, refilling the
// cached block as needed. Reads past the end of the region or of a
// truncated source return short counts, then io.EOF.
func (s *CipherStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	total := 0
	for total < len(p) && s.pos < s.size {
		want := (s.pos / CipherBlockSize) * CipherBlockSize
		if s.blockOff != want {
			if err := s.fill(s.pos / CipherBlockSize); err != nil {
				if err != io.EOF {
					return total, err
				}
				break
			}
		}
		start := int(s.pos - s.blockOff)
		if start >= s.blockLen {
			// Source ended inside this block.
			break
		}
		n := copy(p[total:], s.block[start:s.blockLen])
		total += n
		s.pos += int64(n)
	}
	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// Seek repositions the stream. Seeking past the end is allowed; subsequent
// reads report io.EOF.
func (s *CipherStream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.size + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("negative seek position")
	}
	s.pos = abs
	return abs, nil
}

// fill decrypts block n into the cache. The final block may be short; a
// source shorter than the declared region yields a short block too.
func (s *CipherStream) fill(n int64) error {
	off := n * CipherBlockSize
	length := s.size - off
	if length <= 0 {
		return io.EOF
	}
	if length > CipherBlockSize {
		length = CipherBlockSize
	}
	read, err := s.src.ReadAt(s.block[:length], s.base+off)
	if read == 0 {
		if err == nil || err == io.EOF {
			return io.EOF
		}
		return err
	}
	s.decryptBlock(uint64(n), s.block[:read])
	s.blockOff = off
	s.blockLen = read
	return nil
}

// decryptBlock XORs data in place with block n's keystream. The schedule
// is the classic swap-based one, keyed by HMAC-SHA512 over the caller key
// with an MD5/SHA-1 mix of the block index as the hash key, then mixed by
// 300 extra warm-up rounds. The warm-up is part of the wire format and
// must not be shortened.
func (s *CipherStream) decryptBlock(n uint64, data []byte) {
	var ix [8]byte
	binary.LittleEndian.PutUint64(ix[:], n)

	sum16 := md5.Sum(ix[:])
	sum20 := sha1.Sum(ix[:])
	var seed [md5.Size]byte
	for i := range seed {
		seed[i] = sum16[i] ^ sum20[i]
	}

	mac := hmac.New(sha512.New, seed[:])
	mac.Write(s.key)
	sched := mac.Sum(nil)

	var table [256]byte
	for i := range table {
		table[i] = byte(i)
	}
	j := 0
	for i := 0; i < 256; i++ {
		j = (j + int(table[i]) + int(sched[i%len(sched)])) & 0xFF
		table[i], table[j] = table[j], table[i]
	}

	i0, i1 := 0, 0
	for r := 0; r < warmupRounds; r++ {
		i0 = (i0 + 1) & 0xFF
		i1 = (i1 + int(table[i0])) & 0xFF
		table[i0], table[i1] = table[i1], table[i0]
	}

	for k := range data {
		i0 = (i0 + 1) & 0xFF
		i1 = (i1 + int(table[i0])) & 0xFF
		t := table[i0]
		table[i0], table[i1] = table[i1], table[i0]
		data[k] ^= table[(int(table[i0])+int(t))&0xFF]
	}
}
