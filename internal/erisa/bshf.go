package erisa

import (
	"io"

	"github.com/entisia/go-noa/internal/buffer"
)

const (
	bshfChunkSize = 32
	keyMarker     = 0x1B
	minKeyLength  = 32
)

// ExpandKey builds the BSHF working key from a password: its ASCII bytes,
// extended to at least 32 bytes with the 0x1B marker followed by the
// additive feedback rule. An empty password stands in for a single space.
func ExpandKey(password string) []byte {
	if password == "" {
		password = " "
	}
	src := []byte(password)
	if len(src) >= minKeyLength {
		return append([]byte(nil), src...)
	}
	key := make([]byte, minKeyLength)
	copy(key, src)
	written := len(src)
	key[written] = keyMarker
	written++
	for i := written; i < minKeyLength; i++ {
		key[i] = key[i%written] + key[i-1]
	}
	return key
}

// bshfState derives the per-chunk 256-bit transposition from the working
// key. The rolling key offset advances by one byte per chunk, so chunk
// order matters: the same state must never be shared between decoders.
type bshfState struct {
	key    []byte
	offset int
}

// permutation fills perm with the next chunk's bit mapping. Each of the 256
// source bits is assigned the first not-yet-used target position at or after
// the running key-driven index, wrapping within the chunk.
func (s *bshfState) permutation(perm *[256]uint8) {
	var mask [bshfChunkSize]byte
	if s.offset >= len(s.key) {
		s.offset = 0
	}
	off := s.offset
	s.offset++

	b := 0
	for i := 0; i < 256; i++ {
		b = (b + int(s.key[off])) & 0xFF
		off++
		if off >= len(s.key) {
			off = 0
		}
		for mask[b>>3]&(0x80>>(b&7)) != 0 {
			b = (b + 1) & 0xFF
		}
		mask[b>>3] |= 0x80 >> (b & 7)
		perm[i] = uint8(b)
	}
}

// BshfDecoder recovers plaintext from the password-keyed bit transposition
// applied to 32-byte chunks. Decoding is strictly sequential; seeking means
// replaying from the start.
type BshfDecoder struct {
	r     *buffer.BitReader
	state bshfState

	in  [bshfChunkSize]byte
	out [bshfChunkSize]byte

	outPos   int
	outAvail int
	eof      bool
}

// NewBshfDecoder creates a decoder over src, typically an io.SectionReader
// covering the entry's ciphertext range, but any reader works so decode
// stages can be chained.
func NewBshfDecoder(src io.Reader, password string) *BshfDecoder {
	return &BshfDecoder{
		r:     buffer.NewBitReader(src, buffer.DefaultBufferSize),
		state: bshfState{key: ExpandKey(password)},
	}
}

// Read serves decoded bytes. The final read before end of stream may be
// short; after that io.EOF is returned. A short total against the caller's
// expected length is how truncation is detected.
func (d *BshfDecoder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	total := 0
	for total < len(p) {
		if d.outPos >= d.outAvail {
			if d.eof {
				break
			}
			n := d.decodeChunk()
			if n == 0 {
				d.eof = true
				break
			}
			d.outPos = 0
			d.outAvail = n
			if n < bshfChunkSize {
				d.eof = true
			}
		}
		n := copy(p[total:], d.out[d.outPos:d.outAvail])
		d.outPos += n
		total += n
	}
	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// decodeChunk pulls the next 32 raw bytes through the bit reader's byte
// path and applies the chunk's transposition. It returns the number of
// input bytes that were available; a short tail chunk is decoded with the
// missing input bits treated as zero.
func (d *BshfDecoder) decodeChunk() int {
	n := d.r.ReadBytes(d.in[:])
	if n == 0 {
		return 0
	}
	for i := n; i < bshfChunkSize; i++ {
		d.in[i] = 0
	}
	for i := range d.out {
		d.out[i] = 0
	}

	var perm [256]uint8
	d.state.permutation(&perm)
	for i := 0; i < 256; i++ {
		if d.in[i>>3]&(0x80>>(i&7)) != 0 {
			t := perm[i]
			d.out[t>>3] |= 0x80 >> (t & 7)
		}
	}
	return n
}

// EncodeBSHF applies the forward transposition, producing ciphertext that
// BshfDecoder inverts under the same password. Input is zero-padded to a
// 32-byte multiple, the cipher's chunk granularity; the returned slice has
// the padded length.
func EncodeBSHF(password string, data []byte) []byte {
	padded := (len(data) + bshfChunkSize - 1) &^ (bshfChunkSize - 1)
	src := make([]byte, padded)
	copy(src, data)
	dst := make([]byte, padded)

	st := bshfState{key: ExpandKey(password)}
	var perm [256]uint8
	for c := 0; c < padded; c += bshfChunkSize {
		st.permutation(&perm)
		in := src[c : c+bshfChunkSize]
		out := dst[c : c+bshfChunkSize]
		for i := 0; i < 256; i++ {
			t := perm[i]
			if in[t>>3]&(0x80>>(t&7)) != 0 {
				out[i>>3] |= 0x80 >> (i & 7)
			}
		}
	}
	return dst
}
