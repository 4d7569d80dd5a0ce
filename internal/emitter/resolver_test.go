package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasplang/waspc/internal/profile"
)

func TestDeclareFunctionAssignsSequentialIndices(t *testing.T) {
	r := NewResolver(profile.I32)
	i0 := r.DeclareFunction("log", 1)
	i1 := r.DeclareFunction("add", 2)
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)

	arity, ok := r.FunctionArity("add")
	require.True(t, ok)
	assert.Equal(t, 2, arity)
}

func TestFunctionArityUnknownName(t *testing.T) {
	r := NewResolver(profile.I32)
	_, ok := r.FunctionArity("nope")
	assert.False(t, ok)
}

func TestResetLocalsSeedsParams(t *testing.T) {
	r := NewResolver(profile.I32)
	r.ResetLocals([]string{"a", "b"})
	assert.Equal(t, 2, r.NumLocals())
	assert.Equal(t, 2, r.NumParams())
	assert.Equal(t, 2, r.PeakLocals())
}

func TestPushAndPopLocalsRestoresHeight(t *testing.T) {
	r := NewResolver(profile.I32)
	r.ResetLocals([]string{"x"})
	r.PushLocal("y")
	r.PushLocal("z")
	assert.Equal(t, 3, r.NumLocals())
	assert.Equal(t, 3, r.PeakLocals())
	r.PopLocals(2)
	assert.Equal(t, 1, r.NumLocals())
	assert.Equal(t, 3, r.PeakLocals(), "peak should not shrink after pop")
}

func TestResolveShadowingPrefersMostRecentBinding(t *testing.T) {
	r := NewResolver(profile.I32)
	r.ResetLocals([]string{"x"})
	r.PushLocal("x") // shadow

	res, err := r.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, KindLocal, res.Kind)
	assert.Equal(t, 1, res.Index)
}

func TestResolveFallsThroughLocalThenFunctionThenGlobal(t *testing.T) {
	r := NewResolver(profile.I32)
	r.DeclareFunction("helper", 0)
	r.DeclareGlobal("PI", 3.0)
	r.ResetLocals(nil)

	res, err := r.Resolve("helper")
	require.NoError(t, err)
	assert.Equal(t, KindFunction, res.Kind)

	res, err = r.Resolve("PI")
	require.NoError(t, err)
	assert.Equal(t, KindGlobal, res.Kind)
	assert.Equal(t, 3.0, res.Value)
}

func TestResolveUnknownIdentifierErrors(t *testing.T) {
	r := NewResolver(profile.I32)
	_, err := r.Resolve("bogus")
	assert.Error(t, err)
}

func TestResolveF64ProfileBuiltins(t *testing.T) {
	r := NewResolver(profile.F64)
	res, err := r.Resolve("nil")
	require.NoError(t, err)
	assert.Equal(t, KindGlobal, res.Kind)
	assert.Equal(t, float64(0), res.Value)

	res, err = r.Resolve("size_num")
	require.NoError(t, err)
	assert.Equal(t, float64(8), res.Value)
}

func TestResolveI32ProfileHasNoBuiltins(t *testing.T) {
	r := NewResolver(profile.I32)
	_, err := r.Resolve("nil")
	assert.Error(t, err, "nil is only a built-in under profile F64")
}

func TestFunctionIndexLookup(t *testing.T) {
	r := NewResolver(profile.I32)
	r.DeclareFunction("a", 0)
	r.DeclareFunction("b", 0)
	idx, ok := r.FunctionIndex("b")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = r.FunctionIndex("c")
	assert.False(t, ok)
}

func TestDeclareGlobalForwardReferenceFails(t *testing.T) {
	r := NewResolver(profile.I32)
	// "later" hasn't been declared yet when "earlier" is reduced.
	_, ok := r.GlobalValue("later")
	assert.False(t, ok)
	r.DeclareGlobal("later", 5)
	v, ok := r.GlobalValue("later")
	require.True(t, ok)
	assert.Equal(t, float64(5), v)
}
