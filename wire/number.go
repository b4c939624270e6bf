package wire

import (
	"encoding/binary"
	"math"
	"strconv"
)

// Numbers ride tag 203 as 8 big-endian IEEE-754 bytes. NaN always encodes
// to the canonical quiet pattern. Integers outside the inline range with a
// magnitude below 2^53 are carried as the equal double; the rest are
// carried behind intMarker, a pattern in the NaN space no conforming
// encoder ever produces for a float, followed by 8 bytes of big-endian
// two's-complement.
const (
	canonicalNaN = 0x7FF8000000000000
	intMarker    = 0xFFF0000000000001
)

// maxExactInt is the magnitude below which every int64 converts to a
// float64 without rounding.
const maxExactInt = int64(1) << 53

func appendInt(buf []byte, n int64) []byte {
	if n >= inlineMin && n <= inlineMax {
		return append(buf, byte(n+inlineOffset))
	}
	if n > -maxExactInt && n < maxExactInt {
		return appendFloatBits(buf, math.Float64bits(float64(n)))
	}
	buf = append(buf, tagFloat)
	var scratch [16]byte
	binary.BigEndian.PutUint64(scratch[:8], intMarker)
	binary.BigEndian.PutUint64(scratch[8:], uint64(n))
	return append(buf, scratch[:]...)
}

func appendFloat(buf []byte, f float64) []byte {
	bits := math.Float64bits(f)
	if math.IsNaN(f) {
		bits = canonicalNaN
	}
	return appendFloatBits(buf, bits)
}

func appendFloatBits(buf []byte, bits uint64) []byte {
	buf = append(buf, tagFloat)
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], bits)
	return append(buf, scratch[:]...)
}

// Legacy form: the number is written as text between two 203 bytes. This
// matches archived output from text-era encoders.
func appendLegacyInt(buf []byte, n int64) []byte {
	if n >= inlineMin && n <= inlineMax {
		return append(buf, byte(n+inlineOffset))
	}
	buf = append(buf, tagFloat)
	buf = append(buf, strconv.FormatInt(n, 10)...)
	return append(buf, tagFloat)
}

func appendLegacyFloat(buf []byte, f float64) []byte {
	if math.IsNaN(f) {
		f = math.Float64frombits(canonicalNaN)
	}
	buf = append(buf, tagFloat)
	buf = append(buf, strconv.FormatFloat(f, 'g', 17, 64)...)
	return append(buf, tagFloat)
}
