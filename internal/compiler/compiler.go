// Package compiler is the whole-program driver (spec.md's top-level
// pipeline): parse -> declare functions and globals -> lower function
// bodies -> assemble wasm bytes. It is grounded directly on
// original_source/src/compiler.rs's four-call `compile()` sequence
// (pre_process_functions -> process_globals -> process_functions ->
// set_heap_start), generalized to run under either numeric profile and
// either surface dialect, and adapted to the teacher's single top-level
// entry-point shape (internal/compiler.Compile in lhaig-intent).
package compiler

import (
	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/compileerr"
	"github.com/wasplang/waspc/internal/dataseg"
	"github.com/wasplang/waspc/internal/emitter"
	"github.com/wasplang/waspc/internal/parser"
	"github.com/wasplang/waspc/internal/profile"
	"github.com/wasplang/waspc/internal/wasmmod"
)

// Dialect selects which surface grammar Compile parses source with.
type Dialect int

const (
	SExpr Dialect = iota
	Curly
)

func (d Dialect) String() string {
	if d == Curly {
		return "curly"
	}
	return "sexpr"
}

const wasmPageSize = 65536

// Compile runs the full pipeline over source and returns a wasm 1.0
// binary module. Exactly one error is ever returned — there is no
// incremental recompilation and no recovery from a failed stage, per
// spec.md's Non-goals.
func Compile(prof profile.Profile, dialect Dialect, source string) ([]byte, error) {
	var prog *ast.Program
	var err error
	switch dialect {
	case Curly:
		prog, err = parser.ParseCurly(source)
	default:
		prog, err = parser.ParseSExpr(source)
	}
	if err != nil {
		return nil, err
	}

	asm := wasmmod.NewAssembler()
	res := emitter.NewResolver(prof)
	ds := dataseg.New()

	var externs []*ast.ExternalFunction
	var globals []*ast.Global
	var defs []ast.TopLevel // *ast.Function | *ast.WasmFunction | *ast.TestFunction, in declaration order
	for _, item := range prog.Items {
		switch v := item.(type) {
		case *ast.ExternalFunction:
			externs = append(externs, v)
		case *ast.Global:
			globals = append(globals, v)
		case *ast.Function, *ast.WasmFunction, *ast.TestFunction:
			defs = append(defs, v)
		case *ast.Comment:
			// no codegen effect
		default:
			return nil, compileerr.Misusef("unexpected top-level item %T", item)
		}
	}

	// Pass 1: imports always occupy function indices 0..len(externs)-1.
	nativeType := prof.NativeType()
	for _, ex := range externs {
		res.DeclareFunction(ex.Name, len(ex.Params))
		sig := wasmmod.FuncType{
			Params:  repeatValType(nativeType, len(ex.Params)),
			Results: []profile.ValType{nativeType},
		}
		asm.AddImport(ex.Name, sig)
	}

	// Pass 2: declare every defined function's name, arity, and wasm
	// signature before any body is lowered, so forward calls and
	// Populate's arity lookups resolve regardless of source order.
	funcIndex := make([]int, len(defs))
	for i, item := range defs {
		switch v := item.(type) {
		case *ast.Function:
			res.DeclareFunction(v.Name, len(v.Params))
			sig := wasmmod.FuncType{Params: repeatValType(nativeType, len(v.Params)), Results: []profile.ValType{nativeType}}
			idx := asm.DeclareFunction(sig)
			funcIndex[i] = idx
			if v.Exported {
				asm.AddExport(v.Name, idx)
			}
		case *ast.WasmFunction:
			res.DeclareFunction(v.Name, len(v.Inputs))
			sig, err := wasmFuncType(v)
			if err != nil {
				return nil, err
			}
			idx := asm.DeclareFunction(sig)
			funcIndex[i] = idx
			if v.Exported {
				asm.AddExport(v.Name, idx)
			}
		case *ast.TestFunction:
			res.DeclareFunction(v.Name, 0)
			sig := wasmmod.FuncType{Results: []profile.ValType{nativeType}}
			idx := asm.DeclareFunction(sig)
			funcIndex[i] = idx
			asm.AddExport("test_"+v.Name, idx)
		}
	}

	// Pass 3: globals, in source order, each visible to every later
	// global's GVIdentifier references (forward references still fail).
	for _, g := range globals {
		val, err := emitter.ReduceGlobal(g.Value, ds, res, prof)
		if err != nil {
			return nil, err
		}
		res.DeclareGlobal(g.Name, val)
	}

	// Pass 4: lower every function body. Literal/composite data
	// referenced only inside a body (not a global) is interned here,
	// which is why the heap cursor is only final after this pass.
	for i, item := range defs {
		var code []byte
		var err error
		switch v := item.(type) {
		case *ast.Function:
			code, err = emitter.CompileFunction(prof, res, ds, asm, v)
		case *ast.WasmFunction:
			code, err = emitter.CompileWasmFunction(prof, v)
		case *ast.TestFunction:
			code, err = emitter.CompileTestFunction(prof, res, ds, asm, v)
		}
		if err != nil {
			return nil, err
		}
		asm.SetCode(funcIndex[i], code)
	}

	for _, block := range ds.Blocks() {
		asm.AddData(block.Offset, block.Bytes)
	}

	heapStart := ds.HeapCursor()
	asm.AddGlobal(wasmmod.Global{Mutable: false, Init: heapStart})
	asm.AddGlobal(wasmmod.Global{Mutable: true, Init: heapStart})
	asm.EnsureMemoryPages(uint32(heapStart)/wasmPageSize + 1)

	return asm.Encode(), nil
}

func repeatValType(vt profile.ValType, n int) []profile.ValType {
	if n == 0 {
		return nil
	}
	out := make([]profile.ValType, n)
	for i := range out {
		out[i] = vt
	}
	return out
}

func wasmFuncType(wf *ast.WasmFunction) (wasmmod.FuncType, error) {
	params := make([]profile.ValType, len(wf.Inputs))
	for i, m := range wf.Inputs {
		vt, ok := profile.ValTypeFor(m)
		if !ok {
			return wasmmod.FuncType{}, compileerr.Parsef("defn-wasm %q: invalid input type %q", wf.Name, m)
		}
		params[i] = vt
	}
	results := make([]profile.ValType, len(wf.Outputs))
	for i, m := range wf.Outputs {
		vt, ok := profile.ValTypeFor(m)
		if !ok {
			return wasmmod.FuncType{}, compileerr.Parsef("defn-wasm %q: invalid output type %q", wf.Name, m)
		}
		results[i] = vt
	}
	return wasmmod.FuncType{Params: params, Results: results}, nil
}
