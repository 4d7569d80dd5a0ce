package parser

import (
	"strconv"

	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/compileerr"
)

// ParseCurly parses the curly-brace dialect (spec.md §4.A). Unlike
// ParseSExpr this dialect has no original_source ground truth — it is
// this repo's own generalization of the same AST onto a C-family
// surface syntax, so every production below is a deliberate design
// choice rather than a translation.
func ParseCurly(source string) (*ast.Program, error) {
	s := newStream(NewLexer(source, "//"))
	prog := &ast.Program{}
	for !s.is(EOF) {
		item, err := parseCurlyTopLevel(s)
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
	}
	return prog, nil
}

func parseCurlyTopLevel(s *stream) (ast.TopLevel, error) {
	switch {
	case s.is(COMMENT):
		return &ast.Comment{Text: s.advance().Literal}, nil
	case s.isKeyword("extern"):
		s.advance()
		name, err := s.expect(IDENT)
		if err != nil {
			return nil, err
		}
		params, err := parseIdentParamList(s)
		if err != nil {
			return nil, err
		}
		return &ast.ExternalFunction{Name: name.Literal, Params: params}, nil
	case s.isKeyword("static"):
		s.advance()
		name, err := s.expect(IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(ASSIGN); err != nil {
			return nil, err
		}
		val, err := parseCurlyGlobalValue(s)
		if err != nil {
			return nil, err
		}
		return &ast.Global{Name: name.Literal, Value: val}, nil
	case s.isKeyword("pub"), s.isKeyword("fn"):
		pub := false
		if s.isKeyword("pub") {
			pub = true
			s.advance()
		}
		if err := s.expectKeyword("fn"); err != nil {
			return nil, err
		}
		name, err := s.expect(IDENT)
		if err != nil {
			return nil, err
		}
		params, err := parseIdentParamList(s)
		if err != nil {
			return nil, err
		}
		body, err := parseBlock(s)
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			return nil, compileerr.Parsef("function %q requires a non-empty body", name.Literal)
		}
		return &ast.Function{Name: name.Literal, Exported: pub, Params: params, Body: body}, nil
	case s.is(LPAREN):
		return parseDefStruct(s)
	default:
		return nil, compileerr.Parsef("unknown top-level form starting with %s %q", s.peek().Type, s.peek().Literal)
	}
}

func parseDefStruct(s *stream) (ast.TopLevel, error) {
	s.advance() // LPAREN
	if err := s.expectKeyword("defstruct"); err != nil {
		return nil, err
	}
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	var members []string
	for s.is(SYMBOL) {
		members = append(members, s.advance().Literal)
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Global{Name: name.Literal, Value: &ast.GVStruct{Members: members}}, nil
}

func parseIdentParamList(s *stream) ([]string, error) {
	if _, err := s.expect(LPAREN); err != nil {
		return nil, err
	}
	var out []string
	for !s.is(RPAREN) {
		tok, err := s.expect(IDENT)
		if err != nil {
			return nil, err
		}
		out = append(out, tok.Literal)
		if s.is(COMMA) {
			s.advance()
			continue
		}
		break
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return out, nil
}

func parseCurlyGlobalValue(s *stream) (ast.GlobalValue, error) {
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
	case s.is(LBRACKET):
		s.advance()
		var elems []ast.GlobalValue
		for !s.is(RBRACKET) {
			v, err := parseCurlyGlobalValue(s)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
			if s.is(COMMA) {
				s.advance()
				continue
			}
			break
		}
		if _, err := s.expect(RBRACKET); err != nil {
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

func parseBlock(s *stream) ([]ast.Expression, error) {
	if _, err := s.expect(LBRACE); err != nil {
		return nil, err
	}
	var out []ast.Expression
	for !s.is(RBRACE) && !s.is(EOF) {
		if s.is(COMMENT) {
			out = append(out, &ast.ExprComment{Text: s.advance().Literal})
			continue
		}
		e, err := parseCurlyExpr(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if _, err := s.expect(RBRACE); err != nil {
		return nil, err
	}
	return out, nil
}

func parseArgListParen(s *stream) ([]ast.Expression, error) {
	if _, err := s.expect(LPAREN); err != nil {
		return nil, err
	}
	var out []ast.Expression
	for !s.is(RPAREN) {
		e, err := parseCurlyExpr(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if s.is(COMMA) {
			s.advance()
			continue
		}
		break
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return out, nil
}

func parseBindingList(s *stream) ([]ast.Binding, error) {
	if _, err := s.expect(LPAREN); err != nil {
		return nil, err
	}
	var out []ast.Binding
	for !s.is(RPAREN) {
		name, err := s.expect(IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(ASSIGN); err != nil {
			return nil, err
		}
		e, err := parseCurlyExpr(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Binding{Name: name.Literal, Expr: e})
		if s.is(COMMA) {
			s.advance()
			continue
		}
		break
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return out, nil
}

func parseCurlyExpr(s *stream) (ast.Expression, error) {
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
	case s.isKeyword("if"):
		return parseIfExpr(s)
	case s.isKeyword("let"):
		return parseLetExpr(s)
	case s.isKeyword("loop"):
		return parseLoopExpr(s)
	case s.isKeyword("recur"):
		return parseRecurExpr(s)
	case s.isKeyword("fn"):
		return parseFnSigExpr(s)
	case s.is(HASH):
		return parsePopulateExpr(s)
	case s.is(BANG):
		s.advance()
		operand, err := parseCurlyExpr(s)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: "!", Params: []ast.Expression{operand}}, nil
	case s.is(TILDE):
		s.advance()
		operand, err := parseCurlyExpr(s)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: "~", Params: []ast.Expression{operand}}, nil
	case s.is(LPAREN):
		return parseParenOrBinaryExpr(s)
	case s.is(IDENT):
		return parseIdentExpr(s)
	default:
		return nil, compileerr.Parsef("unexpected token %s %q in expression", s.peek().Type, s.peek().Literal)
	}
}

// parseParenOrBinaryExpr handles both a grouped sub-expression `(expr)`
// and the infix binary-operator form `(a OP b)` spec.md §4.A describes
// for the curly dialect.
func parseParenOrBinaryExpr(s *stream) (ast.Expression, error) {
	s.advance() // LPAREN
	left, err := parseCurlyExpr(s)
	if err != nil {
		return nil, err
	}
	if opName, ok := operatorTokens[s.peek().Type]; ok {
		s.advance()
		right, err := parseCurlyExpr(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(RPAREN); err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: opName, Params: []ast.Expression{left, right}}, nil
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	return left, nil
}

func parseIdentExpr(s *stream) (ast.Expression, error) {
	name := s.advance()
	if s.is(LPAREN) {
		args, err := parseArgListParen(s)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: name.Literal, Params: args}, nil
	}
	if s.is(ASSIGN) {
		s.advance()
		val, err := parseCurlyExpr(s)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Name: name.Literal, Expr: val}, nil
	}
	return &ast.Identifier{Name: name.Literal}, nil
}

func parseIfExpr(s *stream) (ast.Expression, error) {
	s.advance() // "if"
	if !s.is(LPAREN) {
		_, err := s.expect(LPAREN)
		return nil, err
	}
	cond, err := parseParenOrBinaryExpr(s)
	if err != nil {
		return nil, err
	}
	thenBody, err := parseBlock(s)
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Expression
	if s.isKeyword("else") {
		s.advance()
		elseBody, err = parseBlock(s)
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Cond: cond, Then: thenBody, Else: elseBody}, nil
}

func parseLetExpr(s *stream) (ast.Expression, error) {
	s.advance() // "let"
	bindings, err := parseBindingList(s)
	if err != nil {
		return nil, err
	}
	body, err := parseBlock(s)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, compileerr.Parsef("let requires a non-empty body")
	}
	return &ast.Let{Bindings: bindings, Body: body}, nil
}

func parseLoopExpr(s *stream) (ast.Expression, error) {
	s.advance() // "loop"
	var bindings []ast.Binding
	var err error
	if s.is(LPAREN) {
		bindings, err = parseBindingList(s)
		if err != nil {
			return nil, err
		}
	}
	body, err := parseBlock(s)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, compileerr.Misusef("loop with empty body is useless")
	}
	return &ast.Loop{Bindings: bindings, Body: body}, nil
}

func parseRecurExpr(s *stream) (ast.Expression, error) {
	s.advance() // "recur"
	var bindings []ast.Binding
	var err error
	if s.is(LPAREN) {
		bindings, err = parseBindingList(s)
		if err != nil {
			return nil, err
		}
	}
	return &ast.Recur{Bindings: bindings}, nil
}

// parseFnSigExpr parses `fn (types...) -> T` or `fn (types...)` (no
// output), the curly spelling of the s-expression dialect's `fnsig`.
func parseFnSigExpr(s *stream) (ast.Expression, error) {
	s.advance() // "fn"
	if _, err := s.expect(LPAREN); err != nil {
		return nil, err
	}
	var inputs []string
	for !s.is(RPAREN) {
		tok, err := s.expect(IDENT)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, tok.Literal)
		if s.is(COMMA) {
			s.advance()
			continue
		}
		break
	}
	if _, err := s.expect(RPAREN); err != nil {
		return nil, err
	}
	output := ""
	if s.is(ARROW) {
		s.advance()
		tok, err := s.expect(IDENT)
		if err != nil {
			return nil, err
		}
		output = tok.Literal
	}
	return &ast.FnSig{Inputs: inputs, Output: output}, nil
}

func parsePopulateExpr(s *stream) (ast.Expression, error) {
	s.advance() // HASH
	name, err := s.expect(IDENT)
	if err != nil {
		return nil, err
	}
	elems, err := parseArgListParen(s)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, compileerr.Arityf("populate %q requires at least one element", name.Literal)
	}
	return &ast.Populate{Name: name.Literal, Elements: elems}, nil
}
