package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/dataseg"
	"github.com/wasplang/waspc/internal/profile"
	"github.com/wasplang/waspc/internal/wasmmod"
)

func newEmitter(prof profile.Profile) (*FuncEmitter, *Resolver) {
	res := NewResolver(prof)
	ds := dataseg.New()
	asm := wasmmod.NewAssembler()
	res.ResetLocals(nil)
	return NewFuncEmitter(prof, res, ds, asm), res
}

func TestLowerNumberEmitsConst(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	require.NoError(t, e.lowerExpr(&ast.Number{Value: 7}))
	assert.Equal(t, []byte{wasmmod.OpI32Const, 0x07}, e.Buf())
}

func TestLowerTextLiteralInternsAndEmitsAddress(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	require.NoError(t, e.lowerExpr(&ast.TextLiteral{Value: "hi"}))
	assert.Equal(t, []byte{wasmmod.OpI32Const, 0x04}, e.Buf())
}

func TestLowerIdentifierLocalEmitsLocalGet(t *testing.T) {
	e, res := newEmitter(profile.I32)
	res.ResetLocals([]string{"x"})
	require.NoError(t, e.lowerExpr(&ast.Identifier{Name: "x"}))
	assert.Equal(t, []byte{wasmmod.OpLocalGet, 0x00}, e.Buf())
}

func TestLowerIdentifierFunctionEmitsItsIndexAsConst(t *testing.T) {
	e, res := newEmitter(profile.I32)
	res.DeclareFunction("helper", 0)
	require.NoError(t, e.lowerExpr(&ast.Identifier{Name: "helper"}))
	assert.Equal(t, []byte{wasmmod.OpI32Const, 0x00}, e.Buf())
}

func TestLowerLetPushesAndPopsLocals(t *testing.T) {
	e, res := newEmitter(profile.I32)
	let := &ast.Let{
		Bindings: []ast.Binding{{Name: "a", Expr: &ast.Number{Value: 1}}},
		Body:     []ast.Expression{&ast.Identifier{Name: "a"}},
	}
	require.NoError(t, e.lowerExpr(let))
	assert.Equal(t, 0, res.NumLocals(), "let must pop its bindings back off")
	assert.Equal(t, 1, res.PeakLocals())
}

func TestLowerRecurRequiresLocalBindingTarget(t *testing.T) {
	e, res := newEmitter(profile.I32)
	res.DeclareGlobal("G", 1)
	recur := &ast.Recur{Bindings: []ast.Binding{{Name: "G", Expr: &ast.Number{Value: 1}}}}
	err := e.lowerExpr(recur)
	assert.Error(t, err)
}

func TestLowerLoopRejectsEmptyBody(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	err := e.lowerExpr(&ast.Loop{})
	assert.Error(t, err)
}

func TestLowerIfStatementRejectsEmptyThen(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	err := e.lowerExpr(&ast.IfStatement{Cond: &ast.Number{Value: 1}})
	assert.Error(t, err)
}

func TestLowerIfStatementDefaultsElseToZero(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	stmt := &ast.IfStatement{Cond: &ast.Number{Value: 1}, Then: []ast.Expression{&ast.Number{Value: 9}}}
	require.NoError(t, e.lowerExpr(stmt))
	assert.Contains(t, string(e.Buf()), string([]byte{wasmmod.OpElse, wasmmod.OpI32Const, 0x00}))
}

func TestLowerAssignmentRejectsNonLocal(t *testing.T) {
	e, res := newEmitter(profile.I32)
	res.DeclareGlobal("G", 1)
	err := e.lowerExpr(&ast.Assignment{Name: "G", Expr: &ast.Number{Value: 1}})
	assert.Error(t, err)
}

func TestLowerAssignmentToLocalLeavesZeroOnStack(t *testing.T) {
	e, res := newEmitter(profile.I32)
	res.ResetLocals([]string{"x"})
	require.NoError(t, e.lowerExpr(&ast.Assignment{Name: "x", Expr: &ast.Number{Value: 5}}))
	assert.Equal(t, []byte{wasmmod.OpI32Const, 0x05, wasmmod.OpLocalSet, 0x00, wasmmod.OpI32Const, 0x00}, e.Buf())
}

func TestLowerFnSigRegistersType(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	require.NoError(t, e.lowerExpr(&ast.FnSig{Inputs: []string{"i32"}, Output: "i32"}))
	assert.Equal(t, []byte{wasmmod.OpI32Const, 0x00}, e.Buf())
}

func TestLowerUnsupportedNodeErrors(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	err := e.lowerExpr(nil)
	assert.Error(t, err)
}

func TestBoolNormalizeNoOpUnderI32(t *testing.T) {
	e, _ := newEmitter(profile.I32)
	before := len(e.Buf())
	e.emitBoolNormalize()
	assert.Equal(t, before, len(e.Buf()))
}

func TestBoolNormalizeEmitsComparisonsUnderF64(t *testing.T) {
	e, _ := newEmitter(profile.F64)
	e.emitBoolNormalize()
	assert.Equal(t, []byte{wasmmod.OpF64Const, 0, 0, 0, 0, 0, 0, 0, 0, wasmmod.OpF64Eq, wasmmod.OpI32Const, 0, wasmmod.OpI32Eq}, e.Buf())
}
