package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/dataseg"
	"github.com/wasplang/waspc/internal/profile"
)

func TestReduceGlobalNumber(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.I32)
	v, err := ReduceGlobal(&ast.GVNumber{Value: 42}, ds, res, profile.I32)
	require.NoError(t, err)
	assert.Equal(t, float64(42), v)
}

func TestReduceGlobalTextInternsAndReturnsAddress(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.I32)
	v, err := ReduceGlobal(&ast.GVText{Value: "hi"}, ds, res, profile.I32)
	require.NoError(t, err)
	assert.Equal(t, float64(4), v)
	require.Len(t, ds.Blocks(), 1)
	assert.Equal(t, []byte("hi\x00"), ds.Blocks()[0].Bytes)
}

func TestReduceGlobalSymbolIsOneIndexed(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.I32)
	v, err := ReduceGlobal(&ast.GVSymbol{Name: "foo"}, ds, res, profile.I32)
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)
}

func TestReduceGlobalDataPacksElements(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.I32)
	v, err := ReduceGlobal(&ast.GVData{Elements: []ast.GlobalValue{
		&ast.GVNumber{Value: 1},
		&ast.GVNumber{Value: 2},
		&ast.GVNumber{Value: 3},
	}}, ds, res, profile.I32)
	require.NoError(t, err)
	assert.Equal(t, float64(4), v)
	require.Len(t, ds.Blocks(), 1)
	assert.Len(t, ds.Blocks()[0].Bytes, 12) // 3 elements * 4 bytes under profile I32
}

func TestReduceGlobalDataUsesWidth8UnderF64(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.F64)
	_, err := ReduceGlobal(&ast.GVData{Elements: []ast.GlobalValue{&ast.GVNumber{Value: 1}}}, ds, res, profile.F64)
	require.NoError(t, err)
	assert.Len(t, ds.Blocks()[0].Bytes, 8)
}

func TestReduceGlobalStructLayout(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.I32)
	v, err := ReduceGlobal(&ast.GVStruct{Members: []string{"x", "y"}}, ds, res, profile.I32)
	require.NoError(t, err)
	// the two empty member texts are interned first (at 4 and 8), so the
	// struct's own block is the third one, at 12.
	assert.Equal(t, float64(12), v)
	// two (symbol, text) pairs + one 0 sentinel == 5 scalars * 4 bytes.
	assert.Len(t, ds.Blocks()[2].Bytes, 20)
}

func TestReduceGlobalIdentifierResolvesExistingGlobal(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.I32)
	res.DeclareGlobal("PI", 3)
	v, err := ReduceGlobal(&ast.GVIdentifier{Name: "PI"}, ds, res, profile.I32)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)
}

func TestReduceGlobalIdentifierForwardReferenceFails(t *testing.T) {
	ds := dataseg.New()
	res := NewResolver(profile.I32)
	_, err := ReduceGlobal(&ast.GVIdentifier{Name: "notYetDeclared"}, ds, res, profile.I32)
	assert.Error(t, err)
}
