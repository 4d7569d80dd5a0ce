package emitter

import (
	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/compileerr"
	"github.com/wasplang/waspc/internal/dataseg"
	"github.com/wasplang/waspc/internal/profile"
	"github.com/wasplang/waspc/internal/wasmmod"
)

// encodeLocalsDecl builds a code-section locals declaration: a single
// run of n locals of the given type (Wasp functions never declare
// mixed-type locals outside defn-wasm raw bodies).
func encodeLocalsDecl(n int, vt profile.ValType) []byte {
	if n == 0 {
		return wasmmod.EncodeLEB128U(0)
	}
	out := wasmmod.EncodeLEB128U(1)
	out = append(out, wasmmod.EncodeLEB128U(uint64(n))...)
	out = append(out, byte(vt))
	return out
}

// frame wraps an instruction buffer with its locals declaration and a
// trailing End, producing a complete code-section entry.
func frame(prof profile.Profile, res *Resolver, body []byte) []byte {
	out := encodeLocalsDecl(res.PeakLocals()-res.NumParams(), prof.NativeType())
	out = append(out, body...)
	out = append(out, wasmmod.OpEnd)
	return out
}

// CompileFunction lowers fn's body into a complete code-section entry.
// Every value but the last in the body is dropped; the last is the
// function's single result, per spec.md §4.E.
func CompileFunction(prof profile.Profile, res *Resolver, data *dataseg.Builder, asm *wasmmod.Assembler, fn *ast.Function) ([]byte, error) {
	res.ResetLocals(fn.Params)
	e := NewFuncEmitter(prof, res, data, asm)
	if len(fn.Body) == 0 {
		return nil, compileerr.Misusef("function %q has an empty body", fn.Name)
	}
	if err := e.lowerSeqDropAllButLast(fn.Body); err != nil {
		return nil, err
	}
	return frame(prof, res, e.Buf()), nil
}

// CompileTestFunction lowers a deftest body into its implicit
// test_<name> export: the body runs inside a block that short-circuits
// via br 1 as soon as an expression evaluates non-zero, and otherwise
// falls through to a final 0 (spec.md §4.A/E — a test function "fails"
// by producing a non-zero result).
func CompileTestFunction(prof profile.Profile, res *Resolver, data *dataseg.Builder, asm *wasmmod.Assembler, tf *ast.TestFunction) ([]byte, error) {
	res.ResetLocals(nil)
	e := NewFuncEmitter(prof, res, data, asm)

	e.emit(wasmmod.OpBlock, e.blockType())
	scratch := e.allocLocal("")
	for _, x := range tf.Body {
		if err := e.lowerExpr(x); err != nil {
			return nil, err
		}
		e.localTee(scratch)
		e.emitBoolNormalize()
		e.emit(wasmmod.OpIf, wasmmod.BlockVoid)
		e.localGet(scratch)
		e.br(1)
		e.end()
	}
	e.Res.PopLocals(1)
	e.constNum(0)
	e.end()
	return frame(prof, res, e.Buf()), nil
}

// CompileWasmFunction assembles a defn-wasm raw body with no expression
// lowering at all (spec.md §4.A's escape hatch to hand-written wasm):
// each WasmOp is a literal opcode mnemonic (with an optional attached
// immediate), a standalone numeric immediate emitted as a signed LEB128,
// or a comment, which emits nothing. Locals are declared directly from
// wf.Locals, all at the active profile's native type.
func CompileWasmFunction(prof profile.Profile, wf *ast.WasmFunction) ([]byte, error) {
	var body []byte
	for _, op := range wf.Body {
		if op.Identifier == "" {
			if op.Number != nil {
				body = append(body, wasmmod.EncodeLEB128S(int64(*op.Number))...)
				continue
			}
			if op.Comment != "" {
				continue
			}
		}
		opcode, ok := wasmmod.OpcodeByMnemonic[op.Identifier]
		if !ok {
			return nil, compileerr.Misusef("unknown wasm opcode mnemonic %q", op.Identifier)
		}
		body = append(body, opcode)
		if op.Number != nil {
			body = append(body, wasmmod.EncodeLEB128S(int64(*op.Number))...)
		}
	}
	decl := encodeLocalsDecl(len(wf.Locals), prof.NativeType())
	out := append(decl, body...)
	out = append(out, wasmmod.OpEnd)
	return out, nil
}
