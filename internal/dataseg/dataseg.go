// Package dataseg builds the linear-memory data segment (spec.md
// component D): it interns string literals, composite global data, and
// struct layouts, handing back stable addresses, and tracks the 4-byte-
// aligned heap cursor those addresses are carved from.
package dataseg

import (
	"encoding/binary"
	"math"
)

// Builder accumulates data-segment blocks and the symbol table. Address 0
// is reserved — the cursor starts at 4 (spec.md's invariant) so nothing
// ever lives at address 0.
type Builder struct {
	cursor  int32
	blocks  []Block
	symbols []string
}

// Block is one interned chunk of linear memory.
type Block struct {
	Offset int32
	Bytes  []byte
}

// New returns a Builder with its heap cursor at address 4.
func New() *Builder {
	return &Builder{cursor: 4}
}

// HeapCursor is the next free, 4-aligned address.
func (b *Builder) HeapCursor() int32 { return b.cursor }

// Blocks returns every data block interned so far, in interning order.
func (b *Builder) Blocks() []Block { return b.blocks }

func (b *Builder) align() {
	if b.cursor%4 != 0 {
		b.cursor = (b.cursor/4)*4 + 4
	}
}

func (b *Builder) write(bytes []byte) int32 {
	addr := b.cursor
	b.blocks = append(b.blocks, Block{Offset: addr, Bytes: bytes})
	b.cursor += int32(len(bytes))
	b.align()
	return addr
}

// InternText writes s's UTF-8 bytes followed by a NUL terminator at the
// current heap cursor, realigns, and returns the starting address.
// Distinct byte strings always get distinct, non-overlapping addresses;
// interning is not deduplicated (spec.md §8 property 3 only requires
// non-overlap, not dedup).
func (b *Builder) InternText(s string) int32 {
	bytes := append([]byte(s), 0)
	return b.write(bytes)
}

// ScalarWidth is the per-element byte width InternData packs values at:
// 4 bytes under Profile I32, 8 bytes under Profile F64.
type ScalarWidth int

const (
	Width4 ScalarWidth = 4
	Width8 ScalarWidth = 8
)

// InternData encodes each already-reduced scalar at the given width in
// little-endian order, concatenates them into one block, and returns the
// block's starting address.
func (b *Builder) InternData(values []float64, width ScalarWidth) int32 {
	bytes := make([]byte, 0, len(values)*int(width))
	for _, v := range values {
		bytes = append(bytes, encodeScalar(v, width)...)
	}
	return b.write(bytes)
}

func encodeScalar(v float64, width ScalarWidth) []byte {
	buf := make([]byte, width)
	switch width {
	case Width4:
		binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
	case Width8:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	}
	return buf
}

// InternSymbol returns name's stable positive index, interning it on
// first occurrence. The first symbol interned has value 1; 0 is never
// returned (it is reserved, matching spec.md's symbol model).
func (b *Builder) InternSymbol(name string) int {
	for i, s := range b.symbols {
		if s == name {
			return i + 1
		}
	}
	b.symbols = append(b.symbols, name)
	return len(b.symbols)
}
