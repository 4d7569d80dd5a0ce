package wasmmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wasplang/waspc/internal/profile"
)

func i32Sig(n int) FuncType {
	params := make([]profile.ValType, n)
	for i := range params {
		params[i] = profile.ValI32
	}
	return FuncType{Params: params, Results: []profile.ValType{profile.ValI32}}
}

func TestTypeIndexDeduplicatesIdenticalSignatures(t *testing.T) {
	a := NewAssembler()
	i1 := a.TypeIndex(i32Sig(1))
	i2 := a.TypeIndex(i32Sig(1))
	i3 := a.TypeIndex(i32Sig(2))
	assert.Equal(t, i1, i2)
	assert.NotEqual(t, i1, i3)
}

func TestFunctionIndicesAreImportsThenDefined(t *testing.T) {
	a := NewAssembler()
	importIdx := a.AddImport("log", i32Sig(1))
	fnIdx := a.DeclareFunction(i32Sig(0))
	assert.Equal(t, 0, importIdx)
	assert.Equal(t, 1, fnIdx)
	assert.Equal(t, 1, a.numImports())
	assert.Equal(t, 2, a.numFuncs())
}

func TestEnsureMemoryPagesNeverShrinks(t *testing.T) {
	a := NewAssembler()
	a.EnsureMemoryPages(3)
	a.EnsureMemoryPages(1)
	assert.Equal(t, uint32(3), a.memoryPages)
}

func TestEncodeEmptyModuleHasMagicAndVersion(t *testing.T) {
	a := NewAssembler()
	out := a.Encode()
	assert.Equal(t, append(append([]byte{}, magic...), version...), out[:8])
}

func TestEncodeRoundTripIsDeterministic(t *testing.T) {
	build := func() []byte {
		a := NewAssembler()
		a.AddImport("log", i32Sig(1))
		idx := a.DeclareFunction(i32Sig(0))
		a.AddExport("run", idx)
		a.SetCode(idx, []byte{0x00, OpI32Const, 0x2A, OpEnd})
		a.AddGlobal(Global{Mutable: false, Init: 100})
		a.AddData(4, []byte{1, 2, 3})
		return a.Encode()
	}
	out1 := build()
	out2 := build()
	assert.Equal(t, out1, out2)
}

func TestEncodeTableSizedToTotalFunctionCount(t *testing.T) {
	a := NewAssembler()
	a.AddImport("log", i32Sig(1))
	idx := a.DeclareFunction(i32Sig(0))
	a.SetCode(idx, []byte{OpEnd})
	out := a.Encode()
	table := a.encodeTableSection()
	// table section content: elemtype(1) + limits flag(1) + min + max,
	// both min/max LEB128-encoded as numFuncs() == 2.
	assert.Contains(t, string(table), string([]byte{0x70, 0x01}))
	assert.Equal(t, []byte{0x01, 0x70, 0x01, 0x02, 0x02}, table)
	assert.NotEmpty(t, out)
}

func TestEncodeExportSectionContainsExportedName(t *testing.T) {
	a := NewAssembler()
	idx := a.DeclareFunction(i32Sig(0))
	a.SetCode(idx, []byte{OpEnd})
	a.AddExport("main", idx)
	out := a.Encode()
	assert.Contains(t, string(out), "main")
}
