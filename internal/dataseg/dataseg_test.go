package dataseg

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartsCursorAtFour(t *testing.T) {
	b := New()
	assert.Equal(t, int32(4), b.HeapCursor())
}

func TestInternTextAddsNulTerminatorAndAligns(t *testing.T) {
	b := New()
	addr := b.InternText("hi")
	assert.Equal(t, int32(4), addr)
	require.Len(t, b.Blocks(), 1)
	assert.Equal(t, []byte("hi\x00"), b.Blocks()[0].Bytes)
	// 3 bytes written from address 4 -> cursor 7, aligned up to 8.
	assert.Equal(t, int32(8), b.HeapCursor())
}

func TestInternTextNonOverlappingAddresses(t *testing.T) {
	b := New()
	a1 := b.InternText("abc")
	a2 := b.InternText("de")
	assert.NotEqual(t, a1, a2)
	assert.GreaterOrEqual(t, a2, a1+int32(len("abc\x00")))
}

func TestInternTextNotDeduplicated(t *testing.T) {
	b := New()
	a1 := b.InternText("same")
	a2 := b.InternText("same")
	assert.NotEqual(t, a1, a2)
}

func TestHeapCursorAlwaysFourAligned(t *testing.T) {
	b := New()
	for _, s := range []string{"a", "bb", "ccc", "dddd", "eeeee"} {
		b.InternText(s)
		assert.Equal(t, int32(0), b.HeapCursor()%4)
	}
}

func TestInternDataWidth4LittleEndian(t *testing.T) {
	b := New()
	addr := b.InternData([]float64{1, -1, 42}, Width4)
	assert.Equal(t, int32(4), addr)
	block := b.Blocks()[0]
	require.Len(t, block.Bytes, 12)
	assert.Equal(t, int32(1), int32(binary.LittleEndian.Uint32(block.Bytes[0:4])))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(block.Bytes[4:8])))
	assert.Equal(t, int32(42), int32(binary.LittleEndian.Uint32(block.Bytes[8:12])))
}

func TestInternDataWidth8LittleEndian(t *testing.T) {
	b := New()
	b.InternData([]float64{3.5}, Width8)
	block := b.Blocks()[0]
	require.Len(t, block.Bytes, 8)
	got := math.Float64frombits(binary.LittleEndian.Uint64(block.Bytes))
	assert.Equal(t, 3.5, got)
}

func TestInternSymbolStableAndOneIndexed(t *testing.T) {
	b := New()
	assert.Equal(t, 1, b.InternSymbol("foo"))
	assert.Equal(t, 2, b.InternSymbol("bar"))
	assert.Equal(t, 1, b.InternSymbol("foo")) // re-interning returns the same index
}

func TestBlocksReturnedInInterningOrder(t *testing.T) {
	b := New()
	b.InternText("one")
	b.InternText("two")
	blocks := b.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, []byte("one\x00"), blocks[0].Bytes)
	assert.Equal(t, []byte("two\x00"), blocks[1].Bytes)
}
