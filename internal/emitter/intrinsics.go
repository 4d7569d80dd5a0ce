package emitter

import (
	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/compileerr"
	"github.com/wasplang/waspc/internal/profile"
	"github.com/wasplang/waspc/internal/wasmmod"
)

// intrinsic lowers one FunctionCall whose name is a builtin operator
// rather than a user-defined function.
type intrinsic func(e *FuncEmitter, call *ast.FunctionCall) error

// intrinsicTable dispatches call.Name to its lowering function, per
// spec.md's design note favoring a lookup table over one long branch
// (mirrored from wasmmod.OpcodeByMnemonic's own table-dispatch style).
var intrinsicTable = map[string]intrinsic{
	"do":            lowerDo,
	"call":          lowerCallIndirect,
	"mem":           lowerMem8,
	"mem8":          lowerMem8,
	"mem32":         lowerMem32,
	"mem_num":       lowerMemNum,
	"mem_heap_start": lowerMemHeapStart,
	"mem_heap_end":  lowerMemHeapEnd,
	"==":            relOp(OpPair{OpI32Eq, OpF64Eq}),
	"!=":            relOp(OpPair{OpI32Ne, OpF64Ne}),
	"<":             relOp(OpPair{OpI32LtS, OpF64Lt}),
	"<=":            relOp(OpPair{OpI32LeS, OpF64Le}),
	">":             relOp(OpPair{OpI32GtS, OpF64Gt}),
	">=":             relOp(OpPair{OpI32GeS, OpF64Ge}),
	"+":             arithOp(OpPair{OpI32Add, OpF64Add}),
	"-":             arithOp(OpPair{OpI32Sub, OpF64Sub}),
	"*":             arithOp(OpPair{OpI32Mul, OpF64Mul}),
	"/":             arithOp(OpPair{OpI32DivS, OpF64Div}),
	"%":             lowerMod,
	"&":             wideBitwiseOp(wasmmod.OpI32And, wasmmod.OpI64And),
	"|":             wideBitwiseOp(wasmmod.OpI32Or, wasmmod.OpI64Or),
	"^":             wideBitwiseOp(wasmmod.OpI32Xor, wasmmod.OpI64Xor),
	"<<":            wideBitwiseOp(wasmmod.OpI32Shl, wasmmod.OpI64Shl),
	">>":            wideBitwiseOp(wasmmod.OpI32ShrS, wasmmod.OpI64ShrS),
	"!":             lowerLogicalNot,
	"~":             lowerBitwiseNot,
	"and":           lowerAnd,
	"or":            lowerOr,
}

// OpPair holds an i32 opcode and an f64 opcode for the same operator,
// chosen by the active profile.
type OpPair struct{ I32, F64 byte }

func (e *FuncEmitter) lowerCall(call *ast.FunctionCall) error {
	if fn, ok := intrinsicTable[call.Name]; ok {
		return fn(e, call)
	}
	return e.lowerDefaultCall(call)
}

func (e *FuncEmitter) lowerDefaultCall(call *ast.FunctionCall) error {
	idx, ok := e.Res.FunctionIndex(call.Name)
	if !ok {
		return compileerr.UnknownIdentifierf("call to unknown function %q", call.Name)
	}
	arity, _ := e.Res.FunctionArity(call.Name)
	if len(call.Params) != arity {
		return compileerr.Arityf("function %q expects %d arguments, got %d", call.Name, arity, len(call.Params))
	}
	for _, p := range call.Params {
		if err := e.lowerExpr(p); err != nil {
			return err
		}
	}
	e.callFn(idx)
	return nil
}

func lowerDo(e *FuncEmitter, call *ast.FunctionCall) error {
	if len(call.Params) == 0 {
		return compileerr.Misusef("do with no expressions is useless")
	}
	return e.lowerSeqDropAllButLast(call.Params)
}

// lowerCallIndirect lowers the `call` intrinsic: (call sig index args...),
// where sig is a FnSig expression describing the callee's type and index
// is the expression producing its function-table slot. Args are pushed
// first, then the table index, matching wasm's call_indirect operand
// order (the callee index is the last operand pushed, on top of the
// stack).
func lowerCallIndirect(e *FuncEmitter, call *ast.FunctionCall) error {
	if len(call.Params) < 2 {
		return compileerr.Arityf("call requires a signature and a function index, got %d arguments", len(call.Params))
	}
	sig, ok := call.Params[0].(*ast.FnSig)
	if !ok {
		return compileerr.Misusef("first argument to call must be a function signature")
	}
	typ, err := e.funcType(sig)
	if err != nil {
		return err
	}
	args := call.Params[2:]
	if len(args) != len(typ.Params) {
		return compileerr.Arityf("indirect call expects %d arguments, got %d", len(typ.Params), len(args))
	}
	for _, a := range args {
		if err := e.lowerExpr(a); err != nil {
			return err
		}
	}
	if err := e.lowerAddr(call.Params[1]); err != nil {
		return err
	}
	typeIdx := e.Asm.TypeIndex(typ)
	e.emit(wasmmod.OpCallIndirect)
	e.emitLEBU(uint64(typeIdx))
	e.emitLEBU(0) // table index 0
	if sig.Output == "" {
		e.constNum(0)
	}
	return nil
}

func requireArgs(call *ast.FunctionCall, n int) error {
	if len(call.Params) != n {
		return compileerr.Arityf("%q expects %d arguments, got %d", call.Name, n, len(call.Params))
	}
	return nil
}

// lowerMem32 is a full-word memory access, only usable while compiling
// under Profile I32 — distinct from the always-available byte accessor
// `mem`, added so I32-profile source can move a native 32-bit word in
// one access instead of four mem8 calls (spec.md §4.E's dual-profile
// generalization; original_source only ever had `mem` (bytes) and
// `mem_num` (f64 words), since it had a single numeric profile).
func lowerMem32(e *FuncEmitter, call *ast.FunctionCall) error {
	if e.Prof != profile.I32 {
		return compileerr.Misusef("mem32 is only valid under Profile I32")
	}
	return e.lowerMemAccess(call, profile.ValI32)
}

// lowerMemNum is the full-word accessor for Profile F64, matching
// original_source's `mem_num` (F64_LOAD/F64_STORE) exactly.
func lowerMemNum(e *FuncEmitter, call *ast.FunctionCall) error {
	if e.Prof != profile.F64 {
		return compileerr.Misusef("mem_num is only valid under Profile F64")
	}
	return e.lowerMemAccess(call, profile.ValF64)
}

// lowerMem8 is `mem`/`mem8`: a byte-level accessor available under
// either profile, matching original_source's `mem` built-in (I32_LOAD8_U
// / I32_STORE8), with the loaded byte converted to the active profile's
// native type.
func lowerMem8(e *FuncEmitter, call *ast.FunctionCall) error {
	switch len(call.Params) {
	case 1:
		if err := e.lowerAddr(call.Params[0]); err != nil {
			return err
		}
		e.emit(wasmmod.OpI32Load8U, 0, 0)
		if e.Prof == profile.F64 {
			e.emit(wasmmod.OpF64ConvertI32S)
		}
		return nil
	case 2:
		if err := e.lowerAddr(call.Params[0]); err != nil {
			return err
		}
		if err := e.lowerAddr(call.Params[1]); err != nil {
			return err
		}
		e.emit(wasmmod.OpI32Store8, 0, 0)
		e.constNum(0)
		return nil
	default:
		return compileerr.Arityf("mem8 expects 1 or 2 arguments, got %d", len(call.Params))
	}
}

// lowerAddr lowers an address operand, truncating it to i32 when the
// active profile's native type is f64 — addresses are always plain
// integers even when every other value in the function is a float.
func (e *FuncEmitter) lowerAddr(x ast.Expression) error {
	if err := e.lowerExpr(x); err != nil {
		return err
	}
	if e.Prof == profile.F64 {
		e.emit(wasmmod.OpI32TruncF64S)
	}
	return nil
}

func (e *FuncEmitter) lowerMemAccess(call *ast.FunctionCall, vt profile.ValType) error {
	loadOp, storeOp := memOps(vt)
	switch len(call.Params) {
	case 1:
		if err := e.lowerAddr(call.Params[0]); err != nil {
			return err
		}
		e.emit(loadOp, 0, 0)
		return nil
	case 2:
		if err := e.lowerAddr(call.Params[0]); err != nil {
			return err
		}
		if err := e.lowerExpr(call.Params[1]); err != nil {
			return err
		}
		e.emit(storeOp, 0, 0)
		e.constNum(0)
		return nil
	default:
		return compileerr.Arityf("%q expects 1 or 2 arguments, got %d", call.Name, len(call.Params))
	}
}

func memOps(vt profile.ValType) (load, store byte) {
	switch vt {
	case profile.ValI32:
		return wasmmod.OpI32Load, wasmmod.OpI32Store
	case profile.ValF64:
		return wasmmod.OpF64Load, wasmmod.OpF64Store
	}
	return wasmmod.OpI32Load, wasmmod.OpI32Store
}

func lowerMemHeapStart(e *FuncEmitter, call *ast.FunctionCall) error {
	if err := requireArgs(call, 0); err != nil {
		return err
	}
	e.emit(wasmmod.OpGlobalGet)
	e.emitLEBU(0)
	if e.Prof == profile.F64 {
		e.emit(wasmmod.OpF64ConvertI32S)
	}
	return nil
}

func lowerMemHeapEnd(e *FuncEmitter, call *ast.FunctionCall) error {
	switch len(call.Params) {
	case 0:
		e.emit(wasmmod.OpGlobalGet)
		e.emitLEBU(1)
		if e.Prof == profile.F64 {
			e.emit(wasmmod.OpF64ConvertI32S)
		}
		return nil
	case 1:
		if err := e.lowerExpr(call.Params[0]); err != nil {
			return err
		}
		if e.Prof == profile.F64 {
			e.emit(wasmmod.OpI32TruncF64S)
		}
		e.emit(wasmmod.OpGlobalSet)
		e.emitLEBU(1)
		e.constNum(0)
		return nil
	default:
		return compileerr.Arityf("mem_heap_end expects 0 or 1 arguments, got %d", len(call.Params))
	}
}

func relOp(pair OpPair) intrinsic {
	return func(e *FuncEmitter, call *ast.FunctionCall) error {
		if err := requireArgs(call, 2); err != nil {
			return err
		}
		for _, p := range call.Params {
			if err := e.lowerExpr(p); err != nil {
				return err
			}
		}
		if e.Prof == profile.I32 {
			e.emit(pair.I32)
			return nil
		}
		e.emit(pair.F64)
		e.emit(wasmmod.OpF64ConvertI32S)
		return nil
	}
}

// arithOp implements the variadic +, -, *, / operators: at least two
// operands, combined strictly left to right (matching
// original_source's compiler.rs, which folds params.len() >= 2 operands
// pairwise rather than restricting to exactly two).
func arithOp(pair OpPair) intrinsic {
	return func(e *FuncEmitter, call *ast.FunctionCall) error {
		if len(call.Params) < 2 {
			return compileerr.Arityf("%q expects at least 2 arguments, got %d", call.Name, len(call.Params))
		}
		op := pair.F64
		if e.Prof == profile.I32 {
			op = pair.I32
		}
		for i, p := range call.Params {
			if err := e.lowerExpr(p); err != nil {
				return err
			}
			if i != 0 {
				e.emit(op)
			}
		}
		return nil
	}
}

// lowerMod implements the variadic `%`: direct i32.rem_s under Profile
// I32. Under Profile F64, f64 has no native remainder op, so every
// operand widens through i64 and the fold happens entirely in i64,
// converting back to f64 once at the end.
func lowerMod(e *FuncEmitter, call *ast.FunctionCall) error {
	if len(call.Params) < 2 {
		return compileerr.Arityf("%% expects at least 2 arguments, got %d", len(call.Params))
	}
	if e.Prof == profile.I32 {
		for i, p := range call.Params {
			if err := e.lowerExpr(p); err != nil {
				return err
			}
			if i != 0 {
				e.emit(wasmmod.OpI32RemS)
			}
		}
		return nil
	}
	for i, p := range call.Params {
		if err := e.lowerExpr(p); err != nil {
			return err
		}
		e.emit(wasmmod.OpI64TruncF64S)
		if i != 0 {
			e.emit(wasmmod.OpI64RemS)
		}
	}
	e.emit(wasmmod.OpF64ConvertI64S)
	return nil
}

// wideBitwiseOp implements the strictly-binary bitwise/shift operators.
// Profile I32 operates directly on its native i32 operands. Profile F64
// has no bitwise ops at all, so each operand widens through i64 right
// after it's pushed — no scratch local needed since truncation happens
// before the next operand is pushed (matching original_source exactly).
func wideBitwiseOp(i32Op, i64Op byte) intrinsic {
	return func(e *FuncEmitter, call *ast.FunctionCall) error {
		if err := requireArgs(call, 2); err != nil {
			return err
		}
		if e.Prof == profile.I32 {
			for _, p := range call.Params {
				if err := e.lowerExpr(p); err != nil {
					return err
				}
			}
			e.emit(i32Op)
			return nil
		}
		for _, p := range call.Params {
			if err := e.lowerExpr(p); err != nil {
				return err
			}
			e.emit(wasmmod.OpI64TruncF64S)
		}
		e.emit(i64Op)
		e.emit(wasmmod.OpF64ConvertI64S)
		return nil
	}
}

func lowerLogicalNot(e *FuncEmitter, call *ast.FunctionCall) error {
	if err := requireArgs(call, 1); err != nil {
		return err
	}
	if err := e.lowerExpr(call.Params[0]); err != nil {
		return err
	}
	if e.Prof == profile.I32 {
		e.emit(wasmmod.OpI32Eqz)
		return nil
	}
	e.constNum(0)
	e.emit(wasmmod.OpF64Eq)
	e.emit(wasmmod.OpF64ConvertI32S)
	return nil
}

func lowerBitwiseNot(e *FuncEmitter, call *ast.FunctionCall) error {
	if err := requireArgs(call, 1); err != nil {
		return err
	}
	if err := e.lowerExpr(call.Params[0]); err != nil {
		return err
	}
	if e.Prof == profile.I32 {
		e.emit(wasmmod.OpI32Const)
		e.emitLEBS(-1)
		e.emit(wasmmod.OpI32Xor)
		return nil
	}
	e.emit(wasmmod.OpI64TruncF64S)
	e.emit(wasmmod.OpI64Const)
	e.emitLEBS(-1)
	e.emit(wasmmod.OpI64Xor)
	e.emit(wasmmod.OpF64ConvertI64S)
	return nil
}

// lowerAnd implements non-short-circuiting logical and: both operands
// always evaluate, each is compared != 0 (under Profile F64 after
// widening to i64; under Profile I32 directly as i32) to get a
// proper i32 boolean (needed since AND-ing raw nonzero bit patterns
// isn't generally boolean-equivalent — 2 AND 1 is 0 though both are
// truthy), then the two booleans combine with i32.and.
func lowerAnd(e *FuncEmitter, call *ast.FunctionCall) error {
	if err := requireArgs(call, 2); err != nil {
		return err
	}
	if err := e.lowerExpr(call.Params[0]); err != nil {
		return err
	}
	e.emitTruthy()
	if err := e.lowerExpr(call.Params[1]); err != nil {
		return err
	}
	e.emitTruthy()
	e.emit(wasmmod.OpI32And)
	if e.Prof == profile.F64 {
		e.emit(wasmmod.OpF64ConvertI32S)
	}
	return nil
}

// lowerOr implements non-short-circuiting logical or: both operands
// always evaluate, widening to i64 under Profile F64 and staying i32
// under Profile I32; unlike and, or doesn't need a
// per-operand boolean conversion first — ORing the raw bit patterns is
// nonzero iff at least one operand was, so the nonzero check happens
// once on the combined result.
func lowerOr(e *FuncEmitter, call *ast.FunctionCall) error {
	if err := requireArgs(call, 2); err != nil {
		return err
	}
	if e.Prof == profile.I32 {
		if err := e.lowerExpr(call.Params[0]); err != nil {
			return err
		}
		if err := e.lowerExpr(call.Params[1]); err != nil {
			return err
		}
		e.emit(wasmmod.OpI32Or)
		e.emit(wasmmod.OpI32Const, 0)
		e.emit(wasmmod.OpI32Ne)
		return nil
	}
	if err := e.lowerExpr(call.Params[0]); err != nil {
		return err
	}
	e.emit(wasmmod.OpI64TruncF64S)
	if err := e.lowerExpr(call.Params[1]); err != nil {
		return err
	}
	e.emit(wasmmod.OpI64TruncF64S)
	e.emit(wasmmod.OpI64Or)
	e.emit(wasmmod.OpI64Const)
	e.emitLEBS(0)
	e.emit(wasmmod.OpI64Ne)
	e.emit(wasmmod.OpF64ConvertI32S)
	return nil
}

// emitTruthy normalizes the top-of-stack value to an i32 boolean via a
// nonzero check (an i64 one under Profile F64, an i32 one under Profile
// I32), leaving it i32-typed regardless of profile (used to
// build and's per-operand boolean before the i32.and combine).
func (e *FuncEmitter) emitTruthy() {
	if e.Prof == profile.I32 {
		e.emit(wasmmod.OpI32Const, 0)
		e.emit(wasmmod.OpI32Ne)
		return
	}
	e.emit(wasmmod.OpI64TruncF64S)
	e.emit(wasmmod.OpI64Const)
	e.emitLEBS(0)
	e.emit(wasmmod.OpI64Ne)
}

// lowerPopulate lowers (populate fn elem...) as a right fold over the
// flat element list, cut into chunks of size (arity - 1) — the target
// function's last parameter is the running accumulator, its first
// (arity - 1) parameters take one chunk's elements. A final, possibly
// shorter chunk is kept (not dropped). Chunks are combined starting
// from the *last* chunk with a zero seed and working back to the
// first, whose result is the Populate expression's value — grounded on
// the original compiler's chunk-reversal fold (original_source's
// compiler.rs, Populate handling).
func (e *FuncEmitter) lowerPopulate(v *ast.Populate) error {
	idx, ok := e.Res.FunctionIndex(v.Name)
	if !ok {
		return compileerr.UnknownIdentifierf("populate refers to unknown function %q", v.Name)
	}
	arity, _ := e.Res.FunctionArity(v.Name)
	if arity < 1 {
		return compileerr.Misusef("populate target %q must take at least an accumulator parameter", v.Name)
	}
	chunkSize := arity - 1
	if chunkSize == 0 {
		return compileerr.Misusef("populate target %q has no slots for elements", v.Name)
	}

	var chunks [][]ast.Expression
	for start := 0; start < len(v.Elements); start += chunkSize {
		end := start + chunkSize
		if end > len(v.Elements) {
			end = len(v.Elements)
		}
		chunks = append(chunks, v.Elements[start:end])
	}
	if len(chunks) == 0 {
		e.constNum(0)
		return nil
	}

	scratch := e.allocLocal("")
	for j := len(chunks) - 1; j >= 0; j-- {
		chunk := chunks[j]
		for _, el := range chunk {
			if err := e.lowerExpr(el); err != nil {
				return err
			}
		}
		if j == len(chunks)-1 {
			e.constNum(0) // seed accumulator
		} else {
			e.localGet(scratch)
		}
		e.callFn(idx)
		if j != 0 {
			e.localSet(scratch)
		}
	}
	e.Res.PopLocals(1)
	return nil
}
