// Package ast defines the in-memory representation of a parsed Wasp
// program. Nodes are plain data: no behavior beyond small String()/debug
// helpers lives here. Both surface dialects (s-expression and curly)
// produce identical node kinds.
package ast

// Program is an ordered sequence of top-level items, exactly as they
// appeared (after file concatenation) in source.
type Program struct {
	Items []TopLevel
}

// TopLevel is the interface implemented by every top-level item kind.
type TopLevel interface {
	topLevel()
}

// Comment is a top-level comment line. Carried through parsing only so
// formatting/debugging tools could reconstruct source; the emitter never
// looks at it.
type Comment struct {
	Text string
}

// ExternalFunction declares an imported function. Only the arity of
// Params matters for import typing — the names are positional
// placeholders.
type ExternalFunction struct {
	Name   string
	Params []string
}

// Global declares a single named global value, reduced to one numeric
// scalar at data-segment build time (see internal/dataseg).
type Global struct {
	Name  string
	Value GlobalValue
}

// GlobalValue is the interface implemented by every kind of global
// initializer.
type GlobalValue interface {
	globalValue()
}

// GVNumber is a literal numeric global value.
type GVNumber struct {
	Value float64
}

// GVText interns a string into the data segment; resolves to its address.
type GVText struct {
	Value string
}

// GVSymbol interns a symbol name; resolves to its stable positive index.
type GVSymbol struct {
	Name string
}

// GVData is a flat list of sub-values, each reduced and packed into one
// contiguous data-segment block.
type GVData struct {
	Elements []GlobalValue
}

// GVStruct lays out a flat (symbol, text-address) pair table terminated
// by a numeric 0 sentinel, one pair per named member.
type GVStruct struct {
	Members []string
}

// GVIdentifier resolves to the already-computed value of another global.
// Forward references (identifiers naming a global declared later) fail.
type GVIdentifier struct {
	Name string
}

func (GVNumber) globalValue()     {}
func (GVText) globalValue()       {}
func (GVSymbol) globalValue()     {}
func (GVData) globalValue()       {}
func (GVStruct) globalValue()     {}
func (GVIdentifier) globalValue() {}

// Function is a user-defined Wasp function, lowered by internal/emitter.
type Function struct {
	Name     string
	Exported bool
	Params   []string
	Body     []Expression
}

// WasmFunction is a raw wasm function body written directly in mnemonic
// form. Only reachable via the s-expression dialect's `defn-wasm` form.
type WasmFunction struct {
	Name     string
	Exported bool
	Inputs   []string // wasm value type mnemonics: i32, i64, f32, f64
	Outputs  []string
	Locals   []string
	Body     []WasmOp
}

// WasmOp is one token of a raw defn-wasm body: either an opcode mnemonic
// (Identifier) or a numeric immediate (Number).
type WasmOp struct {
	Identifier string
	Number     *float64
	Comment    string
}

// TestFunction is implicitly exported as test_<Name>; its body returns the
// first non-zero expression value, or 0 if none is non-zero. Only
// reachable via the s-expression dialect's `deftest` form.
type TestFunction struct {
	Name string
	Body []Expression
}

func (*Comment) topLevel()          {}
func (*ExternalFunction) topLevel() {}
func (*Global) topLevel()           {}
func (*Function) topLevel()         {}
func (*WasmFunction) topLevel()     {}
func (*TestFunction) topLevel()     {}

// Expression is the interface implemented by every expression node kind.
type Expression interface {
	expression()
}

// Number is a literal numeric value. true/false/nil/() all desugar to
// Number or EmptyList at parse time.
type Number struct {
	Value float64
}

// TextLiteral is a quoted string literal, interned at emit time.
type TextLiteral struct {
	Value string
}

// SymbolLiteral is a :symbol literal, interned at emit time.
type SymbolLiteral struct {
	Name string
}

// EmptyList is the literal `()`; lowers to a zero constant.
type EmptyList struct{}

// Identifier references a local, function, or global by name.
type Identifier struct {
	Name string
}

// FunctionCall is either a call to a user/imported function, or a call to
// one of the emitter's built-in intrinsics (+, mem, call, do, ...) —
// the distinction is made at emit time by the intrinsic dispatch table,
// not at parse time.
type FunctionCall struct {
	Name   string
	Params []Expression
}

// Binding is one (name, expr) pair inside a Let or Loop form, or one
// (name, expr) rebinding inside a Recur form.
type Binding struct {
	Name string
	Expr Expression
}

// Let introduces N lexically scoped bindings visible to Body, pushed onto
// the locals stack and popped again at end-of-form.
type Let struct {
	Bindings []Binding
	Body     []Expression
}

// Loop introduces N bindings like Let, then wraps Body in a wasm `loop`
// block; Recur forms inside Body tail-jump back to this loop's start.
type Loop struct {
	Bindings []Binding
	Body     []Expression
}

// Recur tail-reassigns the innermost enclosing Loop's bindings and jumps
// back to its start. Each binding name must already resolve to a local.
type Recur struct {
	Bindings []Binding
}

// IfStatement is the curly dialect's `if (cond) { ... } else { ... }`;
// the s-expression parser also produces it from `(if cond then [else])`,
// with Then and Else holding one expression each.
type IfStatement struct {
	Cond Expression
	Then []Expression
	Else []Expression
}

// Assignment rebinds an existing local's value (curly dialect only,
// `id = expr`); leaves 0 on the stack so the form still has a value.
type Assignment struct {
	Name string
	Expr Expression
}

// Populate (`#name a b c ...`) bulk-calls a binary-accumulator function
// over a flat element list, chunked by the function's non-accumulator
// arity.
type Populate struct {
	Name     string
	Elements []Expression
}

// FnSig is a first-class function-type literal, legal only as the first
// argument of a `call` intrinsic invocation.
type FnSig struct {
	Inputs []string // wasm value type mnemonics
	Output string    // "" means no result type
}

// ExprComment is a comment appearing in expression position; the emitter
// skips it without leaving a value on the stack (it is never the final
// expression of a body — the parser only ever produces it interspersed
// with real expressions).
type ExprComment struct {
	Text string
}

func (*Number) expression()       {}
func (*TextLiteral) expression()  {}
func (*SymbolLiteral) expression() {}
func (*EmptyList) expression()    {}
func (*Identifier) expression()   {}
func (*FunctionCall) expression() {}
func (*Let) expression()         {}
func (*Loop) expression()        {}
func (*Recur) expression()       {}
func (*IfStatement) expression() {}
func (*Assignment) expression()  {}
func (*Populate) expression()    {}
func (*FnSig) expression()       {}
func (*ExprComment) expression() {}
