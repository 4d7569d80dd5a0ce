// Package emitter lowers Wasp functions to wasm instruction bytes
// (spec.md component E), resolving identifiers via an embedded Resolver
// (component C) and interning literals via an injected dataseg.Builder
// (component D). One FuncEmitter is used per function body; its locals
// stack and recur-depth counter are reset between functions.
package emitter

import (
	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/compileerr"
	"github.com/wasplang/waspc/internal/dataseg"
	"github.com/wasplang/waspc/internal/profile"
	"github.com/wasplang/waspc/internal/wasmmod"
)

// FuncEmitter lowers the body of a single function into wasm instruction
// bytes. The instruction buffer is not yet framed with a locals vector or
// a final End — callers (CompileFunction, CompileTestFunction) do that.
type FuncEmitter struct {
	Prof profile.Profile
	Res  *Resolver
	Data *dataseg.Builder
	Asm  *wasmmod.Assembler

	buf []byte

	// recurDepth is the only non-local state threaded through lowering
	// besides the locals stack: it tracks how many enclosing `if`
	// blocks (each of which pushes a label frame) lie between the
	// current position and the innermost enclosing `loop`, so Recur's
	// `br` targets the right label. Reset to 0 on Loop entry,
	// incremented on entering If lowering and restored to its previous
	// value once that if's `end` is emitted. Nested loops are not
	// specially handled — recur always targets depth as counted since
	// the *last* loop reset, matching the grounding source's own
	// behavior (see original_source/src/compiler.rs).
	recurDepth uint32
}

// NewFuncEmitter returns a FuncEmitter sharing the given resolver, data
// segment builder, and module assembler across every function in one
// compile.
func NewFuncEmitter(prof profile.Profile, res *Resolver, data *dataseg.Builder, asm *wasmmod.Assembler) *FuncEmitter {
	return &FuncEmitter{Prof: prof, Res: res, Data: data, Asm: asm}
}

func (e *FuncEmitter) emit(b ...byte) { e.buf = append(e.buf, b...) }

func (e *FuncEmitter) emitLEBU(v uint64) { e.buf = append(e.buf, wasmmod.EncodeLEB128U(v)...) }
func (e *FuncEmitter) emitLEBS(v int64)  { e.buf = append(e.buf, wasmmod.EncodeLEB128S(v)...) }

// constNum emits a T.const of the profile's native numeric type.
func (e *FuncEmitter) constNum(v float64) {
	if e.Prof == profile.I32 {
		e.emit(wasmmod.OpI32Const)
		e.emitLEBS(int64(v))
		return
	}
	e.emit(wasmmod.OpF64Const)
	e.buf = append(e.buf, wasmmod.EncodeF64(v)...)
}

func (e *FuncEmitter) localGet(idx int) {
	e.emit(wasmmod.OpLocalGet)
	e.emitLEBU(uint64(idx))
}

func (e *FuncEmitter) localSet(idx int) {
	e.emit(wasmmod.OpLocalSet)
	e.emitLEBU(uint64(idx))
}

func (e *FuncEmitter) localTee(idx int) {
	e.emit(wasmmod.OpLocalTee)
	e.emitLEBU(uint64(idx))
}

func (e *FuncEmitter) callFn(idx int) {
	e.emit(wasmmod.OpCall)
	e.emitLEBU(uint64(idx))
}

func (e *FuncEmitter) br(depth uint32) {
	e.emit(wasmmod.OpBr)
	e.emitLEBU(uint64(depth))
}

func (e *FuncEmitter) drop() { e.emit(wasmmod.OpDrop) }
func (e *FuncEmitter) end()  { e.emit(wasmmod.OpEnd) }

func (e *FuncEmitter) blockType() byte { return byte(e.Prof.NativeType()) }

// Buf returns the instruction bytes emitted so far, not yet framed with
// a locals declaration or a trailing End.
func (e *FuncEmitter) Buf() []byte { return e.buf }

// NumExtraLocals is how many local slots beyond the declared parameters
// this function ended up needing, sized to the resolver's high-water
// mark rather than the raw count of AllocLocal calls (slots are reused
// across non-overlapping lifetimes).
func (e *FuncEmitter) NumExtraLocals() int {
	return e.Res.PeakLocals() - e.Res.NumParams()
}

// allocLocal allocates a fresh local slot, returning its index.
func (e *FuncEmitter) allocLocal(name string) int {
	return e.Res.PushLocal(name)
}

// lowerSeqDropAllButLast lowers a sequence of expressions, dropping every
// value but the last one's.
func (e *FuncEmitter) lowerSeqDropAllButLast(exprs []ast.Expression) error {
	for i, x := range exprs {
		if err := e.lowerExpr(x); err != nil {
			return err
		}
		if i != len(exprs)-1 {
			e.drop()
		}
	}
	return nil
}

// lowerExpr lowers one expression, leaving exactly one value on the
// operand stack (spec.md §4.E).
func (e *FuncEmitter) lowerExpr(x ast.Expression) error {
	switch v := x.(type) {
	case *ast.Number:
		e.constNum(v.Value)
		return nil
	case *ast.TextLiteral:
		addr := e.Data.InternText(v.Value)
		e.constNum(float64(addr))
		return nil
	case *ast.SymbolLiteral:
		sym := e.Data.InternSymbol(v.Name)
		e.constNum(float64(sym))
		return nil
	case *ast.EmptyList:
		e.constNum(0)
		return nil
	case *ast.ExprComment:
		return nil
	case *ast.Identifier:
		return e.lowerIdentifier(v.Name)
	case *ast.FunctionCall:
		return e.lowerCall(v)
	case *ast.Let:
		return e.lowerLet(v)
	case *ast.Loop:
		return e.lowerLoop(v)
	case *ast.Recur:
		return e.lowerRecur(v)
	case *ast.Populate:
		return e.lowerPopulate(v)
	case *ast.FnSig:
		return e.lowerFnSig(v)
	case *ast.IfStatement:
		return e.lowerIfStatement(v)
	case *ast.Assignment:
		return e.lowerAssignment(v)
	default:
		return compileerr.Misusef("unsupported expression node %T", x)
	}
}

func (e *FuncEmitter) lowerIdentifier(name string) error {
	res, err := e.Res.Resolve(name)
	if err != nil {
		return err
	}
	switch res.Kind {
	case KindLocal:
		e.localGet(res.Index)
	case KindFunction:
		e.constNum(float64(res.Index))
	case KindGlobal:
		e.constNum(res.Value)
	}
	return nil
}

func (e *FuncEmitter) lowerLet(v *ast.Let) error {
	for _, b := range v.Bindings {
		if err := e.lowerExpr(b.Expr); err != nil {
			return err
		}
		slot := e.allocLocal(b.Name)
		e.localSet(slot)
	}
	if err := e.lowerSeqDropAllButLast(v.Body); err != nil {
		return err
	}
	e.Res.PopLocals(len(v.Bindings))
	return nil
}

func (e *FuncEmitter) lowerLoop(v *ast.Loop) error {
	if len(v.Body) == 0 {
		return compileerr.Misusef("loop with empty body is useless")
	}
	for _, b := range v.Bindings {
		if err := e.lowerExpr(b.Expr); err != nil {
			return err
		}
		slot := e.allocLocal(b.Name)
		e.localSet(slot)
	}
	e.recurDepth = 0
	e.emit(wasmmod.OpLoop, e.blockType())
	if err := e.lowerLoopBody(v.Body); err != nil {
		return err
	}
	e.end()
	e.Res.PopLocals(len(v.Bindings))
	return nil
}

// lowerLoopBody lowers a loop's body expressions, dropping every
// non-tail value; the tail value is the loop's result when control falls
// through (Recur's br re-enters the loop instead), matching spec.md's
// Loop lowering rule.
func (e *FuncEmitter) lowerLoopBody(exprs []ast.Expression) error {
	for i, x := range exprs {
		if err := e.lowerExpr(x); err != nil {
			return err
		}
		if i != len(exprs)-1 {
			e.drop()
		}
	}
	return nil
}

func (e *FuncEmitter) lowerRecur(v *ast.Recur) error {
	for _, b := range v.Bindings {
		res, err := e.Res.Resolve(b.Name)
		if err != nil {
			return err
		}
		if res.Kind != KindLocal {
			return compileerr.Misusef("cannot recur by rebinding non-local identifier %q", b.Name)
		}
		if err := e.lowerExpr(b.Expr); err != nil {
			return err
		}
		e.localSet(res.Index)
	}
	e.constNum(0)
	e.br(e.recurDepth)
	return nil
}

func (e *FuncEmitter) lowerFnSig(v *ast.FnSig) error {
	sig, err := e.funcType(v)
	if err != nil {
		return err
	}
	idx := e.Asm.TypeIndex(sig)
	e.constNum(float64(idx))
	return nil
}

func (e *FuncEmitter) funcType(v *ast.FnSig) (wasmmod.FuncType, error) {
	params := make([]profile.ValType, len(v.Inputs))
	for i, m := range v.Inputs {
		vt, ok := profile.ValTypeFor(m)
		if !ok {
			return wasmmod.FuncType{}, compileerr.Parsef("invalid wasm type %q", m)
		}
		params[i] = vt
	}
	var results []profile.ValType
	if v.Output != "" {
		vt, ok := profile.ValTypeFor(v.Output)
		if !ok {
			return wasmmod.FuncType{}, compileerr.Parsef("invalid wasm type %q", v.Output)
		}
		results = []profile.ValType{vt}
	}
	return wasmmod.FuncType{Params: params, Results: results}, nil
}

func (e *FuncEmitter) lowerIfStatement(v *ast.IfStatement) error {
	if len(v.Then) == 0 {
		return compileerr.Misusef("if requires a non-empty then-branch")
	}
	outerDepth := e.recurDepth
	e.recurDepth++
	if err := e.lowerExpr(v.Cond); err != nil {
		return err
	}
	e.emitBoolNormalize()
	e.emit(wasmmod.OpIf, e.blockType())
	if err := e.lowerSeqDropAllButLast(v.Then); err != nil {
		return err
	}
	e.emit(wasmmod.OpElse)
	if len(v.Else) == 0 {
		e.constNum(0)
	} else if err := e.lowerSeqDropAllButLast(v.Else); err != nil {
		return err
	}
	e.end()
	e.recurDepth = outerDepth
	return nil
}

// emitBoolNormalize normalizes the i32/f64 value on top of the stack to
// an i32 boolean, ready to drive a wasm `if`. Profile I32 values are
// already i32; Profile F64 compares != 0 via double negation (eq 0, then
// eq 0 again), matching spec.md's description of the normalization.
func (e *FuncEmitter) emitBoolNormalize() {
	if e.Prof == profile.I32 {
		return
	}
	e.constNum(0)
	e.emit(wasmmod.OpF64Eq)
	e.emit(wasmmod.OpI32Const, 0)
	e.emit(wasmmod.OpI32Eq)
}

func (e *FuncEmitter) lowerAssignment(v *ast.Assignment) error {
	res, err := e.Res.Resolve(v.Name)
	if err != nil {
		return err
	}
	if res.Kind != KindLocal {
		return compileerr.Misusef("cannot assign to non-local identifier %q", v.Name)
	}
	if err := e.lowerExpr(v.Expr); err != nil {
		return err
	}
	e.localSet(res.Index)
	e.constNum(0)
	return nil
}
