package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasplang/waspc/internal/ast"
)

func TestParseSExprIdentityFunction(t *testing.T) {
	prog, err := ParseSExpr(`(defn id [x] x)`)
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	fn, ok := prog.Items[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "id", fn.Name)
	assert.False(t, fn.Exported)
	assert.Equal(t, []string{"x"}, fn.Params)
	require.Len(t, fn.Body, 1)
	id, ok := fn.Body[0].(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "x", id.Name)
}

func TestParseSExprPubExport(t *testing.T) {
	prog, err := ParseSExpr(`(pub defn double [x] (* x 2))`)
	require.NoError(t, err)
	fn := prog.Items[0].(*ast.Function)
	assert.True(t, fn.Exported)
}

func TestParseSExprLetShadowing(t *testing.T) {
	prog, err := ParseSExpr(`(defn f [x] (let [x 1 x 2] x))`)
	require.NoError(t, err)
	fn := prog.Items[0].(*ast.Function)
	let, ok := fn.Body[0].(*ast.Let)
	require.True(t, ok)
	require.Len(t, let.Bindings, 2)
	assert.Equal(t, "x", let.Bindings[0].Name)
	assert.Equal(t, "x", let.Bindings[1].Name)
}

func TestParseSExprLoopRecur(t *testing.T) {
	src := `
(defn sum [n acc]
  (loop [i n a acc]
    (if (== i 0) a (recur [i (- i 1) a (+ a i)]))))
`
	prog, err := ParseSExpr(src)
	require.NoError(t, err)
	fn := prog.Items[0].(*ast.Function)
	loop, ok := fn.Body[0].(*ast.Loop)
	require.True(t, ok)
	require.Len(t, loop.Bindings, 2)
	ifs, ok := loop.Body[0].(*ast.IfStatement)
	require.True(t, ok)
	cond, ok := ifs.Cond.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "==", cond.Name)
	recur, ok := ifs.Else[0].(*ast.Recur)
	require.True(t, ok)
	require.Len(t, recur.Bindings, 2)
}

func TestParseSExprIndirectCall(t *testing.T) {
	src := `
(extern log [x])
(defn add1 [x _] (+ x 1))
(defn use [] (call (fnsig [i32 i32] i32) add1 41 0))
`
	prog, err := ParseSExpr(src)
	require.NoError(t, err)
	require.Len(t, prog.Items, 3)
	_, ok := prog.Items[0].(*ast.ExternalFunction)
	require.True(t, ok)
	use := prog.Items[2].(*ast.Function)
	call, ok := use.Body[0].(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "call", call.Name)
	require.Len(t, call.Params, 4)
	sig, ok := call.Params[0].(*ast.FnSig)
	require.True(t, ok)
	assert.Equal(t, []string{"i32", "i32"}, sig.Inputs)
	assert.Equal(t, "i32", sig.Output)
}

func TestParseSExprPopulate(t *testing.T) {
	prog, err := ParseSExpr(`(defn s [] (#cons 1 2 3))`)
	require.NoError(t, err)
	fn := prog.Items[0].(*ast.Function)
	pop, ok := fn.Body[0].(*ast.Populate)
	require.True(t, ok)
	assert.Equal(t, "cons", pop.Name)
	assert.Len(t, pop.Elements, 3)
}

func TestParseSExprGlobalValues(t *testing.T) {
	prog, err := ParseSExpr(`
(def answer 42)
(def greeting "hi")
(def tag :ok)
(def pair (1 2 3))
`)
	require.NoError(t, err)
	require.Len(t, prog.Items, 4)
	g0 := prog.Items[0].(*ast.Global)
	assert.Equal(t, float64(42), g0.Value.(*ast.GVNumber).Value)
	g1 := prog.Items[1].(*ast.Global)
	assert.Equal(t, "hi", g1.Value.(*ast.GVText).Value)
	g2 := prog.Items[2].(*ast.Global)
	assert.Equal(t, "ok", g2.Value.(*ast.GVSymbol).Name)
	g3 := prog.Items[3].(*ast.Global)
	assert.Len(t, g3.Value.(*ast.GVData).Elements, 3)
}

func TestParseSExprWasmFunction(t *testing.T) {
	prog, err := ParseSExpr(`(pub defn-wasm raw [i32] [i32] [] local.get 0 end)`)
	require.NoError(t, err)
	wf := prog.Items[0].(*ast.WasmFunction)
	assert.True(t, wf.Exported)
	assert.Equal(t, []string{"i32"}, wf.Inputs)
	assert.Equal(t, []string{"i32"}, wf.Outputs)
	require.Len(t, wf.Body, 3)
	assert.Equal(t, "local.get", wf.Body[0].Identifier)
	assert.Equal(t, float64(0), *wf.Body[1].Number)
}

func TestParseSExprDefTest(t *testing.T) {
	prog, err := ParseSExpr(`(deftest checks_equal (== 1 1))`)
	require.NoError(t, err)
	tf := prog.Items[0].(*ast.TestFunction)
	assert.Equal(t, "checks_equal", tf.Name)
	require.Len(t, tf.Body, 1)
}

func TestParseSExprTopLevelComment(t *testing.T) {
	prog, err := ParseSExpr("; a comment\n(defn f [] 1)")
	require.NoError(t, err)
	require.Len(t, prog.Items, 2)
	_, ok := prog.Items[0].(*ast.Comment)
	require.True(t, ok)
}

func TestParseSExprRejectsGarbage(t *testing.T) {
	_, err := ParseSExpr(`(bogus `)
	assert.Error(t, err)
}

func TestParseSExprEmptyList(t *testing.T) {
	prog, err := ParseSExpr(`(defn f [] ())`)
	require.NoError(t, err)
	fn := prog.Items[0].(*ast.Function)
	_, ok := fn.Body[0].(*ast.EmptyList)
	assert.True(t, ok)
}
