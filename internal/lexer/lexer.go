package lexer

import (
	"strings"

	"github.com/malphas-lang/rustlite/internal/diag"
)

// LexError is recorded when the lexer cannot classify the byte at the
// current offset. The lexer never raises on its own: it synthesizes an
// EOF token and stops there, leaving the parser to report the resulting
// syntax error against the unexpected EOF. LexError exists so a driver
// that wants to surface the underlying cause still can.
type LexError struct {
	Message string
	Pos     int
	Line    int
	Column  int
}

func (e LexError) Error() string { return e.Message }

// ToDiagnostic converts the error into the shared diagnostic model.
func (e LexError) ToDiagnostic(filename string) diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     diag.CodeLexerIllegalCharacter,
		Message:  e.Message,
		Span: diag.Span{
			Filename: filename,
			Line:     e.Line,
			Column:   e.Column,
			Start:    e.Pos,
			End:      e.Pos + 1,
		},
	}
}

// state is the opaque snapshot returned by Mark and consumed by Reset. A
// single shared lookahead buffer plus a saved index into it is enough for
// the parser's backtracking: no token is ever re-scanned after a reset.
type state struct {
	pos int
}

// Lexer is an incremental, backtrackable cursor over source text. Tokens
// are scanned on demand into an append-only buffer; Peek and Next read from
// that buffer, and Mark/Reset save and restore an index into it.
type Lexer struct {
	src      string
	filename string

	rawPos int // byte offset of the next unscanned byte
	line   int // 1-based line of rawPos
	column int // 1-based column of rawPos

	buf   []Token // every token scanned so far, including the trailing EOF once reached
	pos   int     // index into buf that Peek(0)/Next() will return
	atEOF bool    // true once the EOF sentinel has been appended to buf

	Errors []LexError
}

// New creates a lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, column: 1}
}

// SetFilename attaches a filename used in diagnostic spans.
func (l *Lexer) SetFilename(name string) { l.filename = name }

// Filename returns the filename set via SetFilename, if any.
func (l *Lexer) Filename() string { return l.filename }

// ensure grows buf until index n is populated (or EOF has already been
// reached, which is a permanent stopping point).
func (l *Lexer) ensure(n int) {
	for len(l.buf) <= n && !l.atEOF {
		tok := l.scanOne()
		l.buf = append(l.buf, tok)
		if tok.Type == EOF {
			l.atEOF = true
		}
	}
}

// Peek returns the k-th upcoming token without consuming it. Peek(0) is the
// token Next() would return next.
func (l *Lexer) Peek(k int) Token {
	idx := l.pos + k
	l.ensure(idx)
	if idx >= len(l.buf) {
		return l.buf[len(l.buf)-1] // EOF is a permanent tail
	}
	return l.buf[idx]
}

// Next consumes and returns the next token. The EOF sentinel is consumed
// once, so it ends Emitted; further calls keep returning EOF without
// advancing.
func (l *Lexer) Next() Token {
	l.ensure(l.pos)
	if l.pos >= len(l.buf) {
		return l.buf[len(l.buf)-1]
	}
	tok := l.buf[l.pos]
	l.pos++
	return tok
}

// Mark returns an opaque snapshot of the current cursor position.
func (l *Lexer) Mark() state {
	return state{pos: l.pos}
}

// Reset restores the cursor to a previously captured Mark.
func (l *Lexer) Reset(s state) {
	l.pos = s.pos
}

// Drain consumes every remaining token through EOF and returns everything
// consumed so far (equivalent to Emitted after the drain).
func (l *Lexer) Drain() []Token {
	for l.Next().Type != EOF {
	}
	return l.Emitted()
}

// Emitted returns every token consumed via Next so far, in order.
func (l *Lexer) Emitted() []Token {
	out := make([]Token, l.pos)
	copy(out, l.buf[:l.pos])
	return out
}

// scanOne scans exactly one non-trivia token (or the EOF sentinel) from the
// raw input at rawPos. It only touches raw scanning state, never buf.
func (l *Lexer) scanOne() Token {
	l.skipTrivia()

	startPos, startLine, startCol := l.rawPos, l.line, l.column

	if l.rawPos >= len(l.src) {
		return Token{Type: EOF, Pos: startPos, Line: startLine, Column: startCol}
	}

	ch := l.src[l.rawPos]

	switch {
	case ch == '-' && l.at(l.rawPos+1) == '>':
		l.advance(2)
		return l.tok(ARROW, "->", startPos, startLine, startCol)
	case ch == '.' && l.at(l.rawPos+1) == '.':
		l.advance(2)
		return l.tok(DOTDOT, "..", startPos, startLine, startCol)
	case ch == '.':
		l.advance(1)
		return l.tok(DOT, ".", startPos, startLine, startCol)
	case isDigit(ch):
		return l.scanNumber(startPos, startLine, startCol)
	case isIdentStart(ch):
		return l.scanIdent(startPos, startLine, startCol)
	case strings.HasPrefix(l.src[l.rawPos:], "&mut"):
		l.advance(4)
		return l.tok(ANDMUT, "&mut", startPos, startLine, startCol)
	case ch == '&':
		l.advance(1)
		return l.tok(AND, "&", startPos, startLine, startCol)
	case ch == '=' && l.at(l.rawPos+1) == '=':
		l.advance(2)
		return l.tok(OP, "==", startPos, startLine, startCol)
	case ch == '=':
		l.advance(1)
		return l.tok(ASSIGN, "=", startPos, startLine, startCol)
	case ch == '!' && l.at(l.rawPos+1) == '=':
		l.advance(2)
		return l.tok(OP, "!=", startPos, startLine, startCol)
	case ch == '<' && l.at(l.rawPos+1) == '=':
		l.advance(2)
		return l.tok(OP, "<=", startPos, startLine, startCol)
	case ch == '>' && l.at(l.rawPos+1) == '=':
		l.advance(2)
		return l.tok(OP, ">=", startPos, startLine, startCol)
	case ch == '<':
		l.advance(1)
		return l.tok(OP, "<", startPos, startLine, startCol)
	case ch == '>':
		l.advance(1)
		return l.tok(OP, ">", startPos, startLine, startCol)
	case ch == '+' || ch == '-' || ch == '*' || ch == '/':
		l.advance(1)
		return l.tok(OP, string(ch), startPos, startLine, startCol)
	case ch == '(' || ch == ')' || ch == '{' || ch == '}' || ch == '[' || ch == ']':
		l.advance(1)
		return l.tok(DELIM, string(ch), startPos, startLine, startCol)
	case ch == ';' || ch == ':' || ch == ',':
		l.advance(1)
		return l.tok(SEP, string(ch), startPos, startLine, startCol)
	default:
		l.Errors = append(l.Errors, LexError{
			Message: "unrecognized character " + quoteByte(ch),
			Pos:     startPos,
			Line:    startLine,
			Column:  startCol,
		})
		l.rawPos = len(l.src)
		return Token{Type: EOF, Pos: len(l.src), Line: l.line, Column: l.column}
	}
}

func (l *Lexer) tok(tt TokenType, value string, pos, line, col int) Token {
	return Token{Type: tt, Value: value, Pos: pos, Line: line, Column: col}
}

func (l *Lexer) at(i int) byte {
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

// advance moves rawPos forward n bytes, maintaining line/column.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.rawPos < len(l.src); i++ {
		if l.src[l.rawPos] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.rawPos++
	}
}

// skipTrivia consumes whitespace and comments ("//" to end of line, and
// non-nested "/* */") ahead of rawPos.
func (l *Lexer) skipTrivia() {
	for l.rawPos < len(l.src) {
		ch := l.src[l.rawPos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.advance(1)
		case ch == '/' && l.at(l.rawPos+1) == '/':
			for l.rawPos < len(l.src) && l.src[l.rawPos] != '\n' {
				l.advance(1)
			}
		case ch == '/' && l.at(l.rawPos+1) == '*':
			l.advance(2)
			for l.rawPos < len(l.src) && !(l.src[l.rawPos] == '*' && l.at(l.rawPos+1) == '/') {
				l.advance(1)
			}
			if l.rawPos < len(l.src) {
				l.advance(2)
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanNumber(startPos, startLine, startCol int) Token {
	start := l.rawPos
	for l.rawPos < len(l.src) && isDigit(l.src[l.rawPos]) {
		l.advance(1)
	}
	return l.tok(NUMBER, l.src[start:l.rawPos], startPos, startLine, startCol)
}

func (l *Lexer) scanIdent(startPos, startLine, startCol int) Token {
	start := l.rawPos
	for l.rawPos < len(l.src) && isIdentCont(l.src[l.rawPos]) {
		l.advance(1)
	}
	text := l.src[start:l.rawPos]
	return l.tok(lookupIdent(text), text, startPos, startLine, startCol)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func quoteByte(ch byte) string {
	return "'" + string(rune(ch)) + "'"
}
