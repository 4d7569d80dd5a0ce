// Package wasmmod is the module assembler (spec.md component F): it
// accumulates imports, types, function bodies, the table, elements,
// globals, and data exactly as internal/emitter and internal/compiler
// produce them, then serializes the result into a wasm 1.0 binary. The
// serializer half of this package stands in for what spec.md calls an
// external, out-of-scope collaborator — no importable Go library does
// this (see DESIGN.md) — so it is hand-rolled here, directly adapted from
// the teacher's internal/wasmbe/encoding.go.
package wasmmod

import "github.com/wasplang/waspc/internal/profile"

// importModule is the module namespace every extern import is attributed
// to. Wasp has no notion of named import modules of its own (spec.md's
// ExternalFunction carries only a name and params) so every import lands
// under one fixed host namespace, the common convention for freestanding
// wasm toolchains.
const importModule = "env"

// FuncType is a deduplicated wasm function type.
type FuncType struct {
	Params  []profile.ValType
	Results []profile.ValType
}

func (t FuncType) key() string {
	b := make([]byte, 0, len(t.Params)+len(t.Results)+1)
	for _, p := range t.Params {
		b = append(b, byte(p))
	}
	b = append(b, '|')
	for _, r := range t.Results {
		b = append(b, byte(r))
	}
	return string(b)
}

// Global is one entry of the global section: always an i32 const-
// initialized value in this compiler (the two heap pointers).
type Global struct {
	Mutable bool
	Init    int32
}

// DataSegment is one entry of the data section.
type DataSegment struct {
	Offset int32
	Bytes  []byte
}

// Assembler accumulates a module incrementally and serializes it exactly
// once. Function indices are assigned in the order AddImport/
// DeclareFunction are called: imports first, then defined functions —
// matching spec.md's "entry index equals the function's wasm function
// index" invariant.
type Assembler struct {
	types     []FuncType
	typeIndex map[string]int

	importNames []string
	funcTypeIdx []int // type index per function, imports then defined
	codes       [][]byte
	exports     []exportEntry
	globals     []Global
	data        []DataSegment
	memoryPages uint32
}

type exportEntry struct {
	name      string
	funcIndex int
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{typeIndex: make(map[string]int), memoryPages: 1}
}

// TypeIndex returns the type-section index for sig, registering it if
// this is the first time it has been seen (deduplication is structural:
// two FnSigs with identical params/results share one entry).
func (a *Assembler) TypeIndex(sig FuncType) int {
	k := sig.key()
	if idx, ok := a.typeIndex[k]; ok {
		return idx
	}
	idx := len(a.types)
	a.types = append(a.types, sig)
	a.typeIndex[k] = idx
	return idx
}

// AddImport declares one imported function of the given signature and
// returns its function index.
func (a *Assembler) AddImport(name string, sig FuncType) int {
	idx := len(a.funcTypeIdx)
	a.importNames = append(a.importNames, name)
	a.funcTypeIdx = append(a.funcTypeIdx, a.TypeIndex(sig))
	a.codes = append(a.codes, nil) // placeholder, imports have no body
	return idx
}

// DeclareFunction reserves a function index for a to-be-defined function
// of the given signature. Its code must be attached later with SetCode.
func (a *Assembler) DeclareFunction(sig FuncType) int {
	idx := len(a.funcTypeIdx)
	a.funcTypeIdx = append(a.funcTypeIdx, a.TypeIndex(sig))
	a.codes = append(a.codes, nil)
	return idx
}

// SetCode attaches the encoded body (locals-vector + instructions + End)
// for the defined function at funcIndex.
func (a *Assembler) SetCode(funcIndex int, code []byte) {
	a.codes[funcIndex] = code
}

// AddExport exports funcIndex under name.
func (a *Assembler) AddExport(name string, funcIndex int) {
	a.exports = append(a.exports, exportEntry{name: name, funcIndex: funcIndex})
}

// AddGlobal appends one mutable-or-not i32 global and returns its index.
func (a *Assembler) AddGlobal(g Global) int {
	idx := len(a.globals)
	a.globals = append(a.globals, g)
	return idx
}

// AddData appends one data segment at a fixed linear-memory offset.
func (a *Assembler) AddData(offset int32, bytes []byte) {
	a.data = append(a.data, DataSegment{Offset: offset, Bytes: bytes})
}

// EnsureMemoryPages grows the module's declared memory so it is at least
// n 64KiB pages, never shrinking an already-larger request.
func (a *Assembler) EnsureMemoryPages(n uint32) {
	if n > a.memoryPages {
		a.memoryPages = n
	}
}

// numImports is how many of the declared functions are imports (they are
// always added first).
func (a *Assembler) numImports() int {
	return len(a.importNames)
}

// numFuncs is the total function count (imports + defined) — the size of
// the table and elements section, per spec.md's invariant that the table
// has exactly one entry per known function.
func (a *Assembler) numFuncs() int {
	return len(a.funcTypeIdx)
}
