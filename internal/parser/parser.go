// Package parser implements a recursive-descent parser over the token
// stream produced by internal/lexer. It pulls tokens on demand and uses
// the lexer's mark/reset to backtrack over the two syntactic ambiguities
// the grammar can't resolve with a single token of lookahead: whether a
// block's trailing construct is a statement or its tail expression, and
// whether a parsed expression is actually the target of an assignment.
package parser

import (
	"fmt"

	"github.com/malphas-lang/rustlite/internal/ast"
	"github.com/malphas-lang/rustlite/internal/diag"
	"github.com/malphas-lang/rustlite/internal/lexer"
)

// ParseError is raised on an unexpected token. It names the expected tag
// set, the actual token, and the source offset.
type ParseError struct {
	Expected []lexer.TokenType
	Actual   lexer.Token
	Message  string
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected token %s (%q) at offset %d, expected one of %v",
		e.Actual.Type, e.Actual.Value, e.Actual.Pos, e.Expected)
}

// ToDiagnostic converts the error into the shared diagnostic model.
func (e *ParseError) ToDiagnostic(filename string) diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParserUnexpectedToken,
		Message:  e.Error(),
		Span: diag.Span{
			Filename: filename,
			Line:     e.Actual.Line,
			Column:   e.Actual.Column,
			Start:    e.Actual.Pos,
			End:      e.Actual.End(),
		},
	}
}

// Parser drives the lexer one token at a time and builds an AST.
type Parser struct {
	lex *lexer.Lexer
}

// New creates a parser over the given lexer.
func New(lex *lexer.Lexer) *Parser {
	return &Parser{lex: lex}
}

func (p *Parser) peek() lexer.Token      { return p.lex.Peek(0) }
func (p *Parser) peekAt(k int) lexer.Token { return p.lex.Peek(k) }

func (p *Parser) is(tt lexer.TokenType) bool { return p.peek().Type == tt }

func (p *Parser) isValue(tt lexer.TokenType, value string) bool {
	tok := p.peek()
	return tok.Type == tt && tok.Value == value
}

// match consumes and returns the next token if it matches tt, else leaves
// the cursor untouched and returns false.
func (p *Parser) match(tt lexer.TokenType) (lexer.Token, bool) {
	if p.is(tt) {
		return p.lex.Next(), true
	}
	return lexer.Token{}, false
}

func (p *Parser) matchValue(tt lexer.TokenType, value string) (lexer.Token, bool) {
	if p.isValue(tt, value) {
		return p.lex.Next(), true
	}
	return lexer.Token{}, false
}

// expect consumes the next token, panicking with a *ParseError if it isn't
// of type tt. Parse errors unwind via panic/recover so that a failed
// speculative parse can rewind the lexer cleanly (mirrors the original's
// exception-based backtracking).
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok, ok := p.match(tt)
	if !ok {
		panic(&ParseError{Expected: []lexer.TokenType{tt}, Actual: p.peek()})
	}
	return tok
}

func (p *Parser) expectValue(tt lexer.TokenType, value string) lexer.Token {
	tok, ok := p.matchValue(tt, value)
	if !ok {
		panic(&ParseError{Expected: []lexer.TokenType{tt}, Actual: p.peek(),
			Message: fmt.Sprintf("expected %s %q, got %s (%q) at offset %d", tt, value, p.peek().Type, p.peek().Value, p.peek().Pos)})
	}
	return tok
}

func (p *Parser) fail(expected []lexer.TokenType) {
	panic(&ParseError{Expected: expected, Actual: p.peek()})
}

// Parse runs the parser to completion and returns the Program node. Any
// *ParseError raised during parsing is returned as the error value; it is
// never a panic to the caller.
func (p *Parser) Parse() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	prog = p.parseProgram()
	return prog, nil
}

func (p *Parser) parseProgram() *ast.Program {
	pos := p.peek().Pos
	var funcs []*ast.Function
	for !p.is(lexer.EOF) {
		funcs = append(funcs, p.parseFunction())
	}
	return ast.NewProgram(funcs, pos)
}

func (p *Parser) parseFunction() *ast.Function {
	pos := p.expect(lexer.FN).Pos
	name := p.expect(lexer.ID).Value
	p.expectValue(lexer.DELIM, "(")
	params := p.parseParams()
	p.expectValue(lexer.DELIM, ")")
	var retType ast.TypeExpr
	if _, ok := p.match(lexer.ARROW); ok {
		retType = p.parseType()
	}
	body := p.parseFuncBody()
	return ast.NewFunction(name, params, retType, body, pos)
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if p.isValue(lexer.DELIM, ")") {
		return params
	}
	for {
		pos := p.peek().Pos
		_, mut := p.match(lexer.MUT)
		name := p.expect(lexer.ID).Value
		p.expectValue(lexer.SEP, ":")
		typ := p.parseType()
		params = append(params, ast.NewParam(mut, name, typ, pos))
		if _, ok := p.matchValue(lexer.SEP, ","); ok {
			continue
		}
		break
	}
	return params
}

func (p *Parser) parseType() ast.TypeExpr {
	pos := p.peek().Pos
	if _, ok := p.match(lexer.ANDMUT); ok {
		return ast.NewRefType(true, p.parseType(), pos)
	}
	if _, ok := p.match(lexer.AND); ok {
		return ast.NewRefType(false, p.parseType(), pos)
	}
	if _, ok := p.matchValue(lexer.DELIM, "["); ok {
		elem := p.parseType()
		p.expectValue(lexer.SEP, ";")
		numTok := p.expect(lexer.NUMBER)
		p.expectValue(lexer.DELIM, "]")
		return ast.NewArrayType(elem, parseIntLiteral(numTok.Value), pos)
	}
	if _, ok := p.matchValue(lexer.DELIM, "("); ok {
		var elems []ast.TypeExpr
		if !p.isValue(lexer.DELIM, ")") {
			for {
				elems = append(elems, p.parseType())
				if _, ok := p.matchValue(lexer.SEP, ","); ok {
					continue
				}
				break
			}
		}
		p.expectValue(lexer.DELIM, ")")
		return ast.NewTupleType(elems, pos)
	}
	tok := p.expect(lexer.I32)
	return ast.NewPrimitiveType(tok.Value, pos)
}

func (p *Parser) parseFuncBody() ast.Node {
	if p.isValue(lexer.DELIM, "{") {
		return p.parseBlock()
	}
	return p.parseExpr()
}

func (p *Parser) parseBlockOrExpr() ast.Node {
	if p.isValue(lexer.DELIM, "{") {
		return p.parseBlock()
	}
	return p.parseExpr()
}

func (p *Parser) parseBlock() *ast.Block {
	pos := p.expectValue(lexer.DELIM, "{").Pos
	var stmts []ast.Stmt
	for {
		if p.isValue(lexer.DELIM, "}") {
			p.lex.Next()
			return ast.NewBlock(stmts, pos)
		}
		stmt, isTail := p.parseStmtOrTail()
		stmts = append(stmts, stmt)
		if isTail {
			p.expectValue(lexer.DELIM, "}")
			return ast.NewBlock(stmts, pos)
		}
	}
}

// parseStmtOrTail tries to parse a statement; if that fails it rewinds and
// parses an expression instead. A bare trailing expression followed
// immediately by `}` becomes the block's tail expression.
func (p *Parser) parseStmtOrTail() (stmt ast.Stmt, isTail bool) {
	mark := p.lex.Mark()
	if s, ok := p.tryParseStmt(); ok {
		return s, false
	}
	p.lex.Reset(mark)

	exprPos := p.peek().Pos
	expr := p.parseExpr()
	if p.isValue(lexer.DELIM, "}") {
		return ast.NewExprStmt(expr, true, exprPos), true
	}
	p.expectValue(lexer.SEP, ";")
	return ast.NewExprStmt(expr, false, exprPos), false
}

// tryParseStmt attempts one of the dedicated statement productions. If
// parsing fails with a *ParseError, the lexer position is left wherever
// the failed attempt stopped; the caller is responsible for resetting via
// its own mark.
func (p *Parser) tryParseStmt() (s ast.Stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isParseErr := r.(*ParseError); isParseErr {
				s, ok = nil, false
				return
			}
			panic(r)
		}
	}()

	switch p.peek().Type {
	case lexer.LET:
		return p.parseLetStmt(), true
	case lexer.RETURN:
		return p.parseReturnStmt(), true
	case lexer.IF:
		return p.parseIfStmt(), true
	case lexer.WHILE:
		return p.parseWhileStmt(), true
	case lexer.FOR:
		return p.parseForStmt(), true
	case lexer.LOOP:
		return p.parseLoopStmt(), true
	case lexer.BREAK:
		return p.parseBreakStmt(), true
	case lexer.CONTINUE:
		return p.parseContinueStmt(), true
	default:
		if p.isValue(lexer.SEP, ";") {
			pos := p.lex.Next().Pos
			return ast.NewEmpty(pos), true
		}
		return p.parseAssignOrExprStmt(), true
	}
}

func (p *Parser) parseLetStmt() *ast.Let {
	pos := p.expect(lexer.LET).Pos
	_, mut := p.match(lexer.MUT)
	name := p.expect(lexer.ID).Value
	var typ ast.TypeExpr
	if _, ok := p.matchValue(lexer.SEP, ":"); ok {
		typ = p.parseType()
	}
	var init ast.Expr
	if _, ok := p.match(lexer.ASSIGN); ok {
		init = p.parseExpr()
	}
	p.expectValue(lexer.SEP, ";")
	return ast.NewLet(mut, name, typ, init, pos)
}

func (p *Parser) parseReturnStmt() *ast.Return {
	pos := p.expect(lexer.RETURN).Pos
	var val ast.Expr
	if !p.isValue(lexer.SEP, ";") {
		val = p.parseExpr()
	}
	p.expectValue(lexer.SEP, ";")
	return ast.NewReturn(val, pos)
}

func (p *Parser) parseIfStmt() *ast.If {
	pos := p.expect(lexer.IF).Pos
	cond := p.parseExpr()
	then := p.parseBlockOrExpr()
	var els ast.Node
	if _, ok := p.match(lexer.ELSE); ok {
		if p.is(lexer.IF) {
			els = p.parseIfStmt()
		} else {
			els = p.parseBlockOrExpr()
		}
	}
	return ast.NewIf(cond, then, els, pos)
}

func (p *Parser) parseWhileStmt() *ast.While {
	pos := p.expect(lexer.WHILE).Pos
	cond := p.parseExpr()
	body := p.parseBlockOrExpr()
	return ast.NewWhile(cond, body, pos)
}

func (p *Parser) parseForStmt() *ast.For {
	pos := p.expect(lexer.FOR).Pos
	_, mut := p.match(lexer.MUT)
	name := p.expect(lexer.ID).Value
	p.expect(lexer.IN)
	iterable := p.parseIterable()
	body := p.parseBlockOrExpr()
	return ast.NewFor(mut, name, iterable, body, pos)
}

func (p *Parser) parseIterable() ast.Iterable {
	pos := p.peek().Pos
	left := p.parseExpr()
	if _, ok := p.match(lexer.DOTDOT); ok {
		right := p.parseExpr()
		return ast.NewRangeIterable(left, right, pos)
	}
	return ast.NewExprIterable(left, pos)
}

func (p *Parser) parseLoopStmt() *ast.Loop {
	pos := p.expect(lexer.LOOP).Pos
	body := p.parseBlockOrExpr()
	return ast.NewLoop(body, pos)
}

func (p *Parser) parseBreakStmt() *ast.Break {
	pos := p.expect(lexer.BREAK).Pos
	var val ast.Expr
	if !p.isValue(lexer.SEP, ";") {
		val = p.parseExpr()
	}
	p.expectValue(lexer.SEP, ";")
	return ast.NewBreak(val, pos)
}

func (p *Parser) parseContinueStmt() *ast.Continue {
	pos := p.expect(lexer.CONTINUE).Pos
	p.expectValue(lexer.SEP, ";")
	return ast.NewContinue(pos)
}

func (p *Parser) parseAssignOrExprStmt() ast.Stmt {
	pos := p.peek().Pos
	expr := p.parseExpr()
	if _, ok := p.match(lexer.ASSIGN); ok {
		val := p.parseExpr()
		p.expectValue(lexer.SEP, ";")
		return ast.NewAssign(expr, val, pos)
	}
	p.expectValue(lexer.SEP, ";")
	return ast.NewExprStmt(expr, false, pos)
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseIfExpr()
}

func (p *Parser) parseIfExpr() ast.Expr {
	if p.is(lexer.IF) {
		pos := p.lex.Next().Pos
		cond := p.parseExpr()
		then := p.parseBlockOrExpr()
		p.expect(lexer.ELSE)
		els := p.parseBlockOrExpr()
		return ast.NewIfExpr(cond, then, els, pos)
	}
	return p.parseLoopExpr()
}

func (p *Parser) parseLoopExpr() ast.Expr {
	if p.is(lexer.LOOP) {
		pos := p.lex.Next().Pos
		body := p.parseBlockOrExpr()
		return ast.NewLoopExpr(body, pos)
	}
	return p.parseCmp()
}

var cmpOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}

func (p *Parser) parseCmp() ast.Expr {
	left := p.parseAdd()
	for p.is(lexer.OP) && cmpOps[p.peek().Value] {
		tok := p.lex.Next()
		right := p.parseAdd()
		left = ast.NewBinaryOp(tok.Value, left, right, tok.Pos)
	}
	return left
}

func (p *Parser) parseAdd() ast.Expr {
	left := p.parseMul()
	for p.is(lexer.OP) && (p.peek().Value == "+" || p.peek().Value == "-") {
		tok := p.lex.Next()
		right := p.parseMul()
		left = ast.NewBinaryOp(tok.Value, left, right, tok.Pos)
	}
	return left
}

func (p *Parser) parseMul() ast.Expr {
	left := p.parseUnary()
	for p.is(lexer.OP) && (p.peek().Value == "*" || p.peek().Value == "/") {
		tok := p.lex.Next()
		right := p.parseUnary()
		left = ast.NewBinaryOp(tok.Value, left, right, tok.Pos)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch {
	case p.isValue(lexer.OP, "-"):
		tok := p.lex.Next()
		return ast.NewUnaryOp("-", p.parseUnary(), tok.Pos)
	case p.isValue(lexer.OP, "*"):
		tok := p.lex.Next()
		return ast.NewDeref(p.parseUnary(), tok.Pos)
	case p.is(lexer.ANDMUT):
		tok := p.lex.Next()
		return ast.NewAddrOfMut(p.parseUnary(), tok.Pos)
	case p.is(lexer.AND):
		tok := p.lex.Next()
		return ast.NewAddrOf(p.parseUnary(), tok.Pos)
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.isValue(lexer.DELIM, "("):
			pos := p.lex.Next().Pos
			var args []ast.Expr
			if !p.isValue(lexer.DELIM, ")") {
				for {
					args = append(args, p.parseExpr())
					if _, ok := p.matchValue(lexer.SEP, ","); ok {
						continue
					}
					break
				}
			}
			p.expectValue(lexer.DELIM, ")")
			expr = ast.NewCall(expr, args, pos)
		case p.isValue(lexer.DELIM, "["):
			pos := p.lex.Next().Pos
			idx := p.parseExpr()
			p.expectValue(lexer.DELIM, "]")
			expr = ast.NewIndex(expr, idx, pos)
		case p.is(lexer.DOT) && p.peekAt(1).Type == lexer.NUMBER:
			pos := p.lex.Next().Pos
			numTok := p.expect(lexer.NUMBER)
			expr = ast.NewTupleGet(expr, parseIntLiteral(numTok.Value), pos)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch {
	case tok.Type == lexer.NUMBER:
		p.lex.Next()
		return ast.NewNumber(int64(parseIntLiteral(tok.Value)), tok.Pos)
	case tok.Type == lexer.ID:
		p.lex.Next()
		return ast.NewVariable(tok.Value, tok.Pos)
	case tok.Type == lexer.DELIM && tok.Value == "(":
		p.lex.Next()
		if p.isValue(lexer.DELIM, ")") {
			p.lex.Next()
			return ast.NewTuple(nil, tok.Pos)
		}
		var exprs []ast.Expr
		sawComma := false
		for {
			exprs = append(exprs, p.parseExpr())
			if _, ok := p.matchValue(lexer.SEP, ","); !ok {
				break
			}
			sawComma = true
			if p.isValue(lexer.DELIM, ")") {
				break
			}
		}
		p.expectValue(lexer.DELIM, ")")
		if len(exprs) == 1 && !sawComma {
			return exprs[0]
		}
		return ast.NewTuple(exprs, tok.Pos)
	case tok.Type == lexer.DELIM && tok.Value == "{":
		return p.parseBlock()
	case tok.Type == lexer.DELIM && tok.Value == "[":
		p.lex.Next()
		if p.isValue(lexer.DELIM, "]") {
			p.lex.Next()
			return ast.NewArray(nil, tok.Pos)
		}
		var elems []ast.Expr
		for {
			elems = append(elems, p.parseExpr())
			if _, ok := p.matchValue(lexer.SEP, ","); !ok {
				break
			}
			if p.isValue(lexer.DELIM, "]") {
				break
			}
		}
		p.expectValue(lexer.DELIM, "]")
		return ast.NewArray(elems, tok.Pos)
	default:
		p.fail([]lexer.TokenType{lexer.NUMBER, lexer.ID, lexer.DELIM})
		panic("unreachable")
	}
}

// parseIntLiteral converts a NUMBER token's text (digits only, per the
// lexer) into an int. Overflow beyond the host int range is not a concern
// this language's i32 values need to worry about at parse time; i32 range
// enforcement, if any, belongs to the checker, not the parser.
func parseIntLiteral(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
