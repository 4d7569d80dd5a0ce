package wasmmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeLEB128UZero(t *testing.T) {
	assert.Equal(t, []byte{0x00}, EncodeLEB128U(0))
}

func TestEncodeLEB128USingleByte(t *testing.T) {
	assert.Equal(t, []byte{0x7F}, EncodeLEB128U(127))
}

func TestEncodeLEB128UMultiByte(t *testing.T) {
	// 624485 is the canonical LEB128 spec example.
	assert.Equal(t, []byte{0xE5, 0x8E, 0x26}, EncodeLEB128U(624485))
}

func TestEncodeLEB128SPositive(t *testing.T) {
	assert.Equal(t, []byte{0x02}, EncodeLEB128S(2))
}

func TestEncodeLEB128SNegative(t *testing.T) {
	// -1 fits in the single 7-bit group with sign bit set: 0x7F.
	assert.Equal(t, []byte{0x7F}, EncodeLEB128S(-1))
}

func TestEncodeLEB128SNegativeMultiByte(t *testing.T) {
	assert.Equal(t, []byte{0x9B, 0xF1, 0x59}, EncodeLEB128S(-624485))
}

func TestEncodeStringLengthPrefixed(t *testing.T) {
	assert.Equal(t, []byte{0x03, 'f', 'o', 'o'}, EncodeString("foo"))
}

func TestEncodeStringEmpty(t *testing.T) {
	assert.Equal(t, []byte{0x00}, EncodeString(""))
}

func TestEncodeF64RoundTripsBitPattern(t *testing.T) {
	b := EncodeF64(1.5)
	assert.Len(t, b, 8)
	// 1.5 is 0x3FF8000000000000, little-endian.
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xF8, 0x3F}, b)
}

func TestEncodeSectionPrependsIDAndLength(t *testing.T) {
	out := encodeSection(secType, []byte{0xAA, 0xBB})
	assert.Equal(t, []byte{secType, 0x02, 0xAA, 0xBB}, out)
}

func TestEncodeVectorPrependsCount(t *testing.T) {
	out := encodeVector(2, []byte{0x01, 0x02})
	assert.Equal(t, []byte{0x02, 0x01, 0x02}, out)
}
