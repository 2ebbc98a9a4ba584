package util

import (
	"fmt"
	"math"
)

func FormatFileSize(size float64, human bool) string {
	if size <= 0 {
		return "0"
	}
	units := []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	group := 0
	if human {
		group = int(math.Log10(size) / math.Log10(1024))
		if group < 0 {
			group = 0
		}
		if group >= len(units) {
			group = len(units) - 1
		}
	}
	return fmt.Sprintf("%.2f %s", size/math.Pow(1024, float64(group)), units[group])
}

// FormatNumber renders n with comma thousands separators.
func FormatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func ReadBytes(data []byte, count int, pos *int) []byte {
	if *pos > len(data) {
		*pos = len(data)
	}
	if count < 0 {
		count = 0
	}
	if *pos+count > len(data) {
		count = len(data) - *pos
	}
	val := data[*pos : *pos+count]
	*pos += count
	return val
}

func ReadUint16(data []byte, pos *int) uint16 {
	if *pos+2 > len(data) {
		return 0
	}
	val := uint16(data[*pos]) | uint16(data[*pos+1])<<8
	*pos += 2
	return val
}

func ReadUint32(data []byte, pos *int) uint32 {
	if *pos+4 > len(data) {
		return 0
	}
	val := uint32(data[*pos]) | uint32(data[*pos+1])<<8 | uint32(data[*pos+2])<<16 | uint32(data[*pos+3])<<24
	*pos += 4
	return val
}

func ReadUint64(data []byte, pos *int) uint64 {
	if *pos+8 > len(data) {
		return 0
	}
	lo := ReadUint32(data, pos)
	hi := ReadUint32(data, pos)
	return uint64(hi)<<32 | uint64(lo)
}

func ReadInt32(data []byte, pos *int) int32 {
	return int32(ReadUint32(data, pos))
}

func ReadInt64(data []byte, pos *int) int64 {
	return int64(ReadUint64(data, pos))
}

func ReadByte(data []byte, pos *int) byte {
	if *pos >= len(data) {
		return 0
	}
	b := data[*pos]
	*pos += 1
	return b
}
