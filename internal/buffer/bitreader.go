package buffer

import "io"

// DefaultBufferSize is the staging buffer size used when callers pass 0.
const DefaultBufferSize = 0x100

// BitReader pulls bytes from an upstream reader and serves MSB-first bits
// through a 32-bit shift register. The upstream may be a raw byte source
// (an io.SectionReader over the container) or another decoder, so decode
// stages can be chained.
//
// Exhaustion is not an error: ReadBit returns 1 once the upstream runs dry
// and ReadBits returns whatever bits were assembled before that point.
// Downstream decoders rely on this to terminate without failing.
type BitReader struct {
	src io.Reader

	buf  []byte // staging buffer, len is a multiple of 4
	pos  int    // next unread byte in buf
	fill int    // valid bytes in buf

	register uint32 // bits served MSB first
	avail    int    // bits left in register

	exhausted bool
}

// NewBitReader creates a reader over src with a staging buffer of bufSize
// bytes, rounded up to a multiple of 4.
func NewBitReader(src io.Reader, bufSize int) *BitReader {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	bufSize = (bufSize + 3) &^ 3
	return &BitReader{src: src, buf: make([]byte, bufSize)}
}

// Attach rebinds the upstream reader and discards all buffered state.
func (r *BitReader) Attach(src io.Reader) {
	r.src = src
	r.Flush()
}

// Flush resets the staging buffer and the shift register.
func (r *BitReader) Flush() {
	r.pos = 0
	r.fill = 0
	r.register = 0
	r.avail = 0
	r.exhausted = false
}

// Exhausted reports whether a previous read hit the end of the upstream.
func (r *BitReader) Exhausted() bool {
	return r.exhausted
}

// ReadBit returns the next bit. When the upstream is exhausted it returns 1,
// a deliberate non-zero sentinel rather than an error.
func (r *BitReader) ReadBit() int {
	if r.avail == 0 && !r.loadRegister() {
		return 1
	}
	bit := int(r.register >> 31)
	r.register <<= 1
	r.avail--
	return bit
}

// ReadBits assembles n bits MSB first. When the upstream runs out mid-read
// the bits gathered so far are returned as-is.
func (r *BitReader) ReadBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		if r.avail == 0 && !r.loadRegister() {
			return v
		}
		v = v<<1 | r.register>>31
		r.register <<= 1
		r.avail--
	}
	return v
}

// ReadBytes fills p from the byte-buffering path, bypassing the shift
// register. It returns the number of bytes actually copied; zero means the
// upstream is exhausted.
func (r *BitReader) ReadBytes(p []byte) int {
	total := 0
	for total < len(p) {
		if r.pos >= r.fill && !r.refill() {
			break
		}
		n := copy(p[total:], r.buf[r.pos:r.fill])
		r.pos += n
		total += n
	}
	return total
}

// loadRegister pulls up to 4 bytes into the shift register, left aligned.
// A partial load is fine; only a completely dry upstream returns false.
func (r *BitReader) loadRegister() bool {
	loaded := 0
	r.register = 0
	for loaded < 4 {
		if r.pos >= r.fill && !r.refill() {
			break
		}
		r.register |= uint32(r.buf[r.pos]) << (24 - 8*loaded)
		r.pos++
		loaded++
	}
	if loaded == 0 {
		r.exhausted = true
		return false
	}
	r.avail = 8 * loaded
	return true
}

func (r *BitReader) refill() bool {
	if r.src == nil {
		return false
	}
	r.pos = 0
	r.fill = 0
	for r.fill == 0 {
		n, err := r.src.Read(r.buf)
		r.fill = n
		if err != nil {
			break
		}
	}
	return r.fill > 0
}
