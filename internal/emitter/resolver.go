package emitter

import (
	"github.com/wasplang/waspc/internal/compileerr"
	"github.com/wasplang/waspc/internal/profile"
)

// Kind is which of {local, function, global} an identifier resolved to
// (spec.md component C).
type Kind int

const (
	KindLocal Kind = iota
	KindFunction
	KindGlobal
)

// Resolved is the outcome of resolving one identifier.
type Resolved struct {
	Kind  Kind
	Index int     // local slot, or function index
	Value float64 // global scalar value; only meaningful when Kind == KindGlobal
}

// Resolver maps identifiers to {local slot, function index, global value}
// and manages lexical shadowing. It is embedded directly in the emitter,
// per spec.md §4.C, rather than built as a standalone pass.
type Resolver struct {
	prof profile.Profile

	locals    []string // current function's locals stack, params first
	numParams int      // height of locals at the end of ResetLocals
	peak      int      // highest locals height reached since ResetLocals

	functionNames []string
	functionArity []int
	globalNames   []string
	globalValues  []float64
}

// NewResolver returns a Resolver for the given profile with no functions
// or globals declared yet; those are populated during passes P1–P3.
func NewResolver(prof profile.Profile) *Resolver {
	return &Resolver{prof: prof}
}

// DeclareFunction registers a function name at the next function index
// (import_count + defined_index, since imports are always declared
// first). Returns the assigned index.
func (r *Resolver) DeclareFunction(name string, arity int) int {
	r.functionNames = append(r.functionNames, name)
	r.functionArity = append(r.functionArity, arity)
	return len(r.functionNames) - 1
}

// FunctionArity returns the declared parameter count for a known
// function, used by Populate to compute its chunk size (arity - 1).
func (r *Resolver) FunctionArity(name string) (int, bool) {
	for i, fn := range r.functionNames {
		if fn == name {
			return r.functionArity[i], true
		}
	}
	return 0, false
}

// DeclareGlobal registers name -> value, making it visible to later
// Identifier(global) resolution and to GVIdentifier forward lookups
// within Global values declared afterward.
func (r *Resolver) DeclareGlobal(name string, value float64) {
	r.globalNames = append(r.globalNames, name)
	r.globalValues = append(r.globalValues, value)
}

// GlobalValue returns the already-resolved scalar for an existing global,
// used when reducing a GVIdentifier. Forward references (a global naming
// one declared later) are unresolved and fail, matching spec.md §4.D.
func (r *Resolver) GlobalValue(name string) (float64, bool) {
	for i, g := range r.globalNames {
		if g == name {
			return r.globalValues[i], true
		}
	}
	return 0, false
}

// ResetLocals clears the locals stack at the start of a new function body
// and seeds it with the function's parameters, which occupy the first N
// slots without any separate local allocation.
func (r *Resolver) ResetLocals(params []string) {
	r.locals = append([]string{}, params...)
	r.numParams = len(r.locals)
	r.peak = len(r.locals)
}

// PushLocal allocates a local slot and returns its index. A slot index is
// reused once every local pushed after it has gone out of scope (the
// visibility stack's height returning to a previously-seen value reuses
// that height's index) — safe since the two bindings' lifetimes never
// overlap. PeakLocals tracks the high-water mark so the function body can
// declare enough physical locals to cover every index ever handed out.
func (r *Resolver) PushLocal(name string) int {
	r.locals = append(r.locals, name)
	if len(r.locals) > r.peak {
		r.peak = len(r.locals)
	}
	return len(r.locals) - 1
}

// PopLocals removes the n most recently pushed local names from the
// scope-visibility stack. The slot indices they occupied become free to
// be reused by later bindings at the same nesting depth.
func (r *Resolver) PopLocals(n int) {
	r.locals = r.locals[:len(r.locals)-n]
}

// NumLocals is the current height of the locals-visibility stack, used by
// spec.md §8 property 5 (scope hygiene) to check a Let/Loop body restores
// it exactly.
func (r *Resolver) NumLocals() int { return len(r.locals) }

// PeakLocals is the highest locals-stack height reached since the last
// ResetLocals, i.e. one past the highest local slot index ever used.
func (r *Resolver) PeakLocals() int { return r.peak }

// NumParams is the parameter count recorded by the most recent
// ResetLocals call.
func (r *Resolver) NumParams() int { return r.numParams }

// Resolve looks up name as {local, function, global}, in that order,
// searching locals in reverse insertion order so shadowing's first match
// wins. Profile F64 additionally recognizes two built-ins: nil -> 0,
// size_num -> 8 (spec.md §4.C).
func (r *Resolver) Resolve(name string) (Resolved, error) {
	if r.prof == profile.F64 {
		switch name {
		case "nil":
			return Resolved{Kind: KindGlobal, Value: 0}, nil
		case "size_num":
			return Resolved{Kind: KindGlobal, Value: 8}, nil
		}
	}

	for i := len(r.locals) - 1; i >= 0; i-- {
		if r.locals[i] == name {
			return Resolved{Kind: KindLocal, Index: i}, nil
		}
	}
	for i, fn := range r.functionNames {
		if fn == name {
			return Resolved{Kind: KindFunction, Index: i}, nil
		}
	}
	for i, g := range r.globalNames {
		if g == name {
			return Resolved{Kind: KindGlobal, Value: r.globalValues[i]}, nil
		}
	}
	return Resolved{}, compileerr.UnknownIdentifierf("could not find identifier %q", name)
}

// FunctionIndex resolves name and requires it to be a known function
// (used by Populate and the default-call lowering rule).
func (r *Resolver) FunctionIndex(name string) (int, bool) {
	for i, fn := range r.functionNames {
		if fn == name {
			return i, true
		}
	}
	return 0, false
}
