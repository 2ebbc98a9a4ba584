package buffer

import (
	"bytes"
	"io"
	"testing"
)

func TestBitReader_ReadBits(t *testing.T) {
	// Test data: 0b11010010 0b01101110
	data := []byte{0xD2, 0x6E}
	br := NewBitReader(bytes.NewReader(data), 8)

	tests := []struct {
		name     string
		bits     int
		expected uint32
	}{
		{"Read 3 bits", 3, 0b110},
		{"Read 5 bits", 5, 0b10010},
		{"Read 4 bits", 4, 0b0110},
		{"Read 4 bits", 4, 0b1110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := br.ReadBits(tt.bits)
			if got != tt.expected {
				t.Errorf("ReadBits(%d) = %b, want %b", tt.bits, got, tt.expected)
			}
		})
	}
}

func TestBitReader_ReadBit(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xA0}), 4)

	want := []int{1, 0, 1, 0, 0, 0, 0, 0}
	for i, w := range want {
		if got := br.ReadBit(); got != w {
			t.Fatalf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestBitReader_ExhaustionSentinel(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x00}), 4)

	if got := br.ReadBits(8); got != 0 {
		t.Fatalf("ReadBits(8) = %x, want 0", got)
	}
	// Upstream is dry: ReadBit must return the 1 sentinel, not an error.
	for i := 0; i < 3; i++ {
		if got := br.ReadBit(); got != 1 {
			t.Fatalf("exhausted ReadBit() = %d, want 1", got)
		}
	}
	if !br.Exhausted() {
		t.Fatal("Exhausted() = false after dry read")
	}
}

func TestBitReader_ShortReadBits(t *testing.T) {
	// 12 bits available, 16 requested: the assembled prefix comes back.
	br := NewBitReader(bytes.NewReader([]byte{0xAB, 0xC0}), 4)

	_ = br.ReadBits(4)
	got := br.ReadBits(16)
	if got != 0xBC0 {
		t.Fatalf("short ReadBits(16) = %x, want bc0", got)
	}
}

func TestBitReader_ReadBytes(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	br := NewBitReader(bytes.NewReader(data), 4)

	buf := make([]byte, 2)
	if n := br.ReadBytes(buf); n != 2 || !bytes.Equal(buf, []byte{0x01, 0x02}) {
		t.Errorf("ReadBytes = %v (n=%d), want [1 2]", buf, n)
	}

	buf = make([]byte, 4)
	n := br.ReadBytes(buf)
	if n != 3 || !bytes.Equal(buf[:n], []byte{0x03, 0x04, 0x05}) {
		t.Errorf("ReadBytes = %v (n=%d), want [3 4 5] n=3", buf[:n], n)
	}

	if n := br.ReadBytes(buf); n != 0 {
		t.Errorf("ReadBytes after EOF = %d, want 0", n)
	}
}

func TestBitReader_BufferSizeRounding(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultBufferSize},
		{1, 4},
		{4, 4},
		{5, 8},
		{31, 32},
	}
	for _, tt := range tests {
		br := NewBitReader(nil, tt.in)
		if len(br.buf) != tt.want {
			t.Errorf("NewBitReader(%d) buf len = %d, want %d", tt.in, len(br.buf), tt.want)
		}
	}
}

func TestBitReader_AttachResets(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xFF, 0xFF}), 4)
	_ = br.ReadBits(5)

	br.Attach(bytes.NewReader([]byte{0x00}))
	if got := br.ReadBits(8); got != 0 {
		t.Fatalf("ReadBits after Attach = %x, want 0", got)
	}
}

func TestBitReader_Chained(t *testing.T) {
	// A reader fed by another reader: the inner stage simply passes bytes
	// through its byte path.
	inner := NewBitReader(bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF}), 4)
	outer := NewBitReader(readerFunc(func(p []byte) (int, error) {
		n := inner.ReadBytes(p)
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}), 4)

	if got := outer.ReadBits(32); got != 0xDEADBEEF {
		t.Fatalf("chained ReadBits(32) = %x, want deadbeef", got)
	}
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
