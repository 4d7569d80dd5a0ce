package parser

import (
	"strconv"

	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/compileerr"
)

// ParseSExpr parses the Lisp-flavored s-expression dialect (spec.md
// §4.A), grounded directly on original_source/src/parser.rs's nom
// grammar, hand-translated into recursive descent.
func ParseSExpr(source string) (*ast.Program, error) {
	s := newStream(NewLexer(source, ";"))
	prog := &ast.Program{}
	for !s.is(EOF) {
		item, err := parseSExprTopLevel(s)
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
	}
	return prog, nil
}

func skipComments(s *stream) {
	for s.is(COMMENT) {
		s.advance()
	}
}

func parseSExprTopLevel(s *stream) (ast.TopLevel, error) {
	if s.is(COMMENT) {
		return &ast.Comment{Text: s.advance().Literal}, nil
	}
	if _, err := s.expect(LPAREN); err != nil {
		return nil, err
	}
	skipComments(s)

	pub := false
	if s.isKeyword("pub") {
		pub = true
		s.advance()
		skipComments(s)
	}

	switch {
	case s.isKeyword("extern"):
		if pub {
			return nil, compileerr.Parsef("extern cannot be marked pub")
		}
		return parseExternalFunction(s)
	case s.isKeyword("def"):
		if pub {
			return nil, compileerr.Parsef("def cannot be marked pub")
		}
		return parseGlobalDef(s)
	case s.isKeyword("defn-wasm"):
		return parseWasmFunction(s, pub)
	case s.isKeyword("defn"):
		return parseFunction(s, pub)
	case s.isKeyword("deftest"):
		if pub {
			return nil, compileerr.Parsef("deftest cannot be marked pub")
		}
		return parseTestFunction(s)
	default:
		return nil, compileerr.Parsef("unknown top-level form starting with %q", s.peek().Literal)
	}
}

func parseExternalFunction(s *stream) (ast.TopLevel, error) {
	s.advance() // "extern"
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(LBRACKET); err != nil {
		return nil, err
	}
	var params []string
	for s.is(IDENT) {
		params = append(params, s.advance().Literal)
	}
	if _, err := s.expect(RBRACKET); err != nil {
		return nil, err
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.ExternalFunction{Name: name.Literal, Params: params}, nil
}

func parseGlobalDef(s *stream) (ast.TopLevel, error) {
	s.advance() // "def"
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	val, err := parseGlobalValue(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Global{Name: name.Literal, Value: val}, nil
}

func parseGlobalValue(s *stream) (ast.GlobalValue, error) {
	switch {
	case s.is(NUMBER):
		v, err := strconv.ParseFloat(s.advance().Literal, 64)
		if err != nil {
			return nil, compileerr.Parsef("invalid number: %v", err)
		}
		return &ast.GVNumber{Value: v}, nil
	case s.is(STRING):
		return &ast.GVText{Value: s.advance().Literal}, nil
	case s.is(SYMBOL):
		return &ast.GVSymbol{Name: s.advance().Literal}, nil
	case s.isKeyword("true"):
		s.advance()
		return &ast.GVNumber{Value: 1}, nil
	case s.isKeyword("false"):
		s.advance()
		return &ast.GVNumber{Value: 0}, nil
	case s.isKeyword("nil"):
		s.advance()
		return &ast.GVNumber{Value: 0}, nil
	case s.is(LPAREN):
		s.advance()
		var elems []ast.GlobalValue
		for !s.is(RPAREN) && !s.is(EOF) {
			v, err := parseGlobalValue(s)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		if _, err := s.expect(RPAREN); err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return nil, compileerr.Parsef("global data list requires at least one element")
		}
		return &ast.GVData{Elements: elems}, nil
	case s.is(IDENT):
		return &ast.GVIdentifier{Name: s.advance().Literal}, nil
	default:
		return nil, compileerr.Parsef("expected global value, got %s %q", s.peek().Type, s.peek().Literal)
	}
}

func parseFunction(s *stream, pub bool) (ast.TopLevel, error) {
	s.advance() // "defn"
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(LBRACKET); err != nil {
		return nil, err
	}
	var params []string
	for s.is(IDENT) {
		params = append(params, s.advance().Literal)
	}
	if _, err := s.expect(RBRACKET); err != nil {
		return nil, err
	}
	body, err := parseExprListUntilRParen(s)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, compileerr.Parsef("function %q requires a non-empty body", name.Literal)
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Function{Name: name.Literal, Exported: pub, Params: params, Body: body}, nil
}

func parseWasmFunction(s *stream, pub bool) (ast.TopLevel, error) {
	s.advance() // "defn-wasm"
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	inputs, err := parseTypeBracket(s)
	if err != nil {
		return nil, err
	}
	outputs, err := parseTypeBracket(s)
	if err != nil {
		return nil, err
	}
	locals, err := parseTypeBracket(s)
	if err != nil {
		return nil, err
	}
	var ops []ast.WasmOp
	for !s.is(RPAREN) && !s.is(EOF) {
		op, err := parseWasmOp(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.WasmFunction{Name: name.Literal, Exported: pub, Inputs: inputs, Outputs: outputs, Locals: locals, Body: ops}, nil
}

func parseTypeBracket(s *stream) ([]string, error) {
	skipComments(s)
	if _, err := s.expect(LBRACKET); err != nil {
		return nil, err
	}
	skipComments(s)
	var types []string
	for s.is(IDENT) {
		types = append(types, s.advance().Literal)
		skipComments(s)
	}
	if _, err := s.expect(RBRACKET); err != nil {
		return nil, err
	}
	return types, nil
}

func parseWasmOp(s *stream) (ast.WasmOp, error) {
	switch {
	case s.is(COMMENT):
		return ast.WasmOp{Comment: s.advance().Literal}, nil
	case s.is(NUMBER):
		v, err := strconv.ParseFloat(s.advance().Literal, 64)
		if err != nil {
			return ast.WasmOp{}, compileerr.Parsef("invalid number: %v", err)
		}
		return ast.WasmOp{Number: &v}, nil
	case s.is(IDENT):
		return ast.WasmOp{Identifier: s.advance().Literal}, nil
	default:
		return ast.WasmOp{}, compileerr.Parsef("expected wasm opcode or immediate, got %s %q", s.peek().Type, s.peek().Literal)
	}
}

func parseTestFunction(s *stream) (ast.TopLevel, error) {
	s.advance() // "deftest"
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	body, err := parseExprListUntilRParen(s)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, compileerr.Parsef("deftest %q requires a non-empty body", name.Literal)
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.TestFunction{Name: name.Literal, Body: body}, nil
}

func parseExprListUntilRParen(s *stream) ([]ast.Expression, error) {
	var out []ast.Expression
	for !s.is(RPAREN) && !s.is(EOF) {
		e, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseExpression(s *stream) (ast.Expression, error) {
	switch {
	case s.is(COMMENT):
		return &ast.ExprComment{Text: s.advance().Literal}, nil
	case s.is(NUMBER):
		v, err := strconv.ParseFloat(s.advance().Literal, 64)
		if err != nil {
			return nil, compileerr.Parsef("invalid number: %v", err)
		}
		return &ast.Number{Value: v}, nil
	case s.is(STRING):
		return &ast.TextLiteral{Value: s.advance().Literal}, nil
	case s.is(SYMBOL):
		return &ast.SymbolLiteral{Name: s.advance().Literal}, nil
	case s.isKeyword("true"):
		s.advance()
		return &ast.Number{Value: 1}, nil
	case s.isKeyword("false"):
		s.advance()
		return &ast.Number{Value: 0}, nil
	case s.isKeyword("nil"):
		s.advance()
		return &ast.Number{Value: 0}, nil
	case s.is(IDENT):
		return &ast.Identifier{Name: s.advance().Literal}, nil
	case s.is(LPAREN):
		return parseParenExpr(s)
	default:
		return nil, compileerr.Parsef("unexpected token %s %q in expression", s.peek().Type, s.peek().Literal)
	}
}

func parseParenExpr(s *stream) (ast.Expression, error) {
	s.advance() // LPAREN
	skipComments(s)
	if s.is(RPAREN) {
		s.advance()
		return &ast.EmptyList{}, nil
	}
	switch {
	case s.is(HASH):
		return parsePopulateRest(s)
	case s.isKeyword("let"):
		return parseLetRest(s)
	case s.isKeyword("loop"):
		return parseLoopRest(s)
	case s.isKeyword("recur"):
		return parseRecurRest(s)
	case s.isKeyword("fnsig"):
		return parseFnSigRest(s)
	default:
		return parseFunctionCallRest(s)
	}
}

func parseBindingPairs(s *stream) ([]ast.Binding, error) {
	skipComments(s)
	if _, err := s.expect(LBRACKET); err != nil {
		return nil, err
	}
	skipComments(s)
	var bindings []ast.Binding
	for s.is(IDENT) {
		name := s.advance().Literal
		expr, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Name: name, Expr: expr})
		skipComments(s)
	}
	if _, err := s.expect(RBRACKET); err != nil {
		return nil, err
	}
	return bindings, nil
}

func parseLetRest(s *stream) (ast.Expression, error) {
	s.advance() // "let"
	bindings, err := parseBindingPairs(s)
	if err != nil {
		return nil, err
	}
	body, err := parseExprListUntilRParen(s)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, compileerr.Parsef("let requires a non-empty body")
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Let{Bindings: bindings, Body: body}, nil
}

func parseLoopRest(s *stream) (ast.Expression, error) {
	s.advance() // "loop"
	bindings, err := parseBindingPairs(s)
	if err != nil {
		return nil, err
	}
	body, err := parseExprListUntilRParen(s)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, compileerr.Misusef("loop with empty body is useless")
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Loop{Bindings: bindings, Body: body}, nil
}

func parseRecurRest(s *stream) (ast.Expression, error) {
	s.advance() // "recur"
	bindings, err := parseBindingPairs(s)
	if err != nil {
		return nil, err
	}
	skipComments(s)
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Recur{Bindings: bindings}, nil
}

func parseFnSigRest(s *stream) (ast.Expression, error) {
	s.advance() // "fnsig"
	skipComments(s)
	if _, err := s.expect(LBRACKET); err != nil {
		return nil, err
	}
	skipComments(s)
	var inputs []string
	for s.is(IDENT) {
		inputs = append(inputs, s.advance().Literal)
		skipComments(s)
	}
	if _, err := s.expect(RBRACKET); err != nil {
		return nil, err
	}
	skipComments(s)
	output := ""
	if s.is(IDENT) {
		output = s.advance().Literal
	}
	skipComments(s)
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.FnSig{Inputs: inputs, Output: output}, nil
}

func parsePopulateRest(s *stream) (ast.Expression, error) {
	s.advance() // HASH
	skipComments(s)
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	var elems []ast.Expression
	for !s.is(RPAREN) && !s.is(EOF) {
		e, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if len(elems) == 0 {
		return nil, compileerr.Arityf("populate %q requires at least one element", name.Literal)
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Populate{Name: name.Literal, Elements: elems}, nil
}

func parseFunctionCallRest(s *stream) (ast.Expression, error) {
	var name string
	if s.is(IDENT) {
		name = s.advance().Literal
	} else if opName, ok := operatorTokens[s.peek().Type]; ok {
		s.advance()
		name = opName
	} else {
		return nil, compileerr.Parsef("expected a function-call head, got %s %q", s.peek().Type, s.peek().Literal)
	}
	var params []ast.Expression
	for !s.is(RPAREN) && !s.is(EOF) {
		e, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		params = append(params, e)
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	// `if` is the one call head the grounding source special-cases at
	// lowering time instead of treating as an ordinary intrinsic: it
	// always takes exactly a condition plus one then-expression and an
	// optional else-expression, so it desugars directly to IfStatement
	// here rather than flowing through FunctionCall/intrinsicTable.
	if name == "if" {
		switch len(params) {
		case 2:
			return &ast.IfStatement{Cond: params[0], Then: []ast.Expression{params[1]}}, nil
		case 3:
			return &ast.IfStatement{Cond: params[0], Then: []ast.Expression{params[1]}, Else: []ast.Expression{params[2]}}, nil
		default:
			return nil, compileerr.Arityf("if expects 2 or 3 arguments, got %d", len(params))
		}
	}
	return &ast.FunctionCall{Name: name, Params: params}, nil
}
