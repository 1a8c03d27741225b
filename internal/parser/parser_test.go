package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/rustlite/internal/ast"
	"github.com/malphas-lang/rustlite/internal/lexer"
	"github.com/malphas-lang/rustlite/internal/parser"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func TestParseIdentityFunction(t *testing.T) {
	prog := parseProgram(t, `fn main() -> i32 { let x: i32 = 1; return x; }`)
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	assert.Equal(t, "main", fn.Name)
	require.NotNil(t, fn.ReturnType)
	block, ok := fn.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 2)
	letStmt, ok := block.Stmts[0].(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, "x", letStmt.Name)
	_, ok = block.Stmts[1].(*ast.Return)
	assert.True(t, ok)
}

func TestParseTailExpression(t *testing.T) {
	prog := parseProgram(t, `fn f() -> i32 { 1 + 2 }`)
	block := prog.Functions[0].Body.(*ast.Block)
	require.Len(t, block.Stmts, 1)
	exprStmt, ok := block.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	assert.True(t, exprStmt.Tail)
}

func TestParseGroupingVsTuple(t *testing.T) {
	prog := parseProgram(t, `fn f() -> i32 { let x: i32 = (1 + 2); let y: (i32, i32) = (1, 2); x }`)
	block := prog.Functions[0].Body.(*ast.Block)
	grouped := block.Stmts[0].(*ast.Let)
	_, isBinary := grouped.Init.(*ast.BinaryOp)
	assert.True(t, isBinary, "single parenthesized expr should not become a Tuple")

	tup := block.Stmts[1].(*ast.Let)
	tupleExpr, ok := tup.Init.(*ast.Tuple)
	require.True(t, ok)
	assert.Len(t, tupleExpr.Elems, 2)
}

func TestParseEmptyTuple(t *testing.T) {
	prog := parseProgram(t, `fn f() { let u: () = (); }`)
	block := prog.Functions[0].Body.(*ast.Block)
	let := block.Stmts[0].(*ast.Let)
	tuple, ok := let.Init.(*ast.Tuple)
	require.True(t, ok)
	assert.Empty(t, tuple.Elems)
}

func TestParseAndMutVsAnd(t *testing.T) {
	prog := parseProgram(t, `fn f() { let mut x: i32 = 0; let r1 = &mut x; let r2 = &x; }`)
	block := prog.Functions[0].Body.(*ast.Block)
	r1 := block.Stmts[1].(*ast.Let)
	_, ok := r1.Init.(*ast.AddrOfMut)
	assert.True(t, ok)
	r2 := block.Stmts[2].(*ast.Let)
	_, ok = r2.Init.(*ast.AddrOf)
	assert.True(t, ok)
}

func TestParseIfExprRequiresElse(t *testing.T) {
	_, err := parser.New(lexer.New(`fn f() -> i32 { let x: i32 = if 1 { 1 } ; x }`)).Parse()
	assert.Error(t, err)
}

func TestParseIfStmtElseOptional(t *testing.T) {
	prog := parseProgram(t, `fn f() { if 1 { } }`)
	block := prog.Functions[0].Body.(*ast.Block)
	ifStmt, ok := block.Stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Else)
}

func TestParseElseIfChain(t *testing.T) {
	prog := parseProgram(t, `fn f() { if 1 { } else if 2 { } else { } }`)
	block := prog.Functions[0].Body.(*ast.Block)
	ifStmt := block.Stmts[0].(*ast.If)
	elseIf, ok := ifStmt.Else.(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, elseIf.Else)
}

func TestParseLoopBreakValue(t *testing.T) {
	prog := parseProgram(t, `fn main() -> i32 { let y: i32 = loop { break 7; }; return y; }`)
	block := prog.Functions[0].Body.(*ast.Block)
	let := block.Stmts[0].(*ast.Let)
	loopExpr, ok := let.Init.(*ast.LoopExpr)
	require.True(t, ok)
	body := loopExpr.Body.(*ast.Block)
	brk := body.Stmts[0].(*ast.Break)
	num := brk.Value.(*ast.Number)
	assert.Equal(t, int64(7), num.Value)
}

func TestParseForRange(t *testing.T) {
	prog := parseProgram(t, `fn f() { for i in 0..10 { } }`)
	block := prog.Functions[0].Body.(*ast.Block)
	forStmt := block.Stmts[0].(*ast.For)
	rangeIter, ok := forStmt.Iterable.(*ast.RangeIterable)
	require.True(t, ok)
	assert.IsType(t, &ast.Number{}, rangeIter.Start)
	assert.IsType(t, &ast.Number{}, rangeIter.End)
}

func TestParseTupleFieldAccessAndIndex(t *testing.T) {
	prog := parseProgram(t, `fn f() { let a: [i32; 3] = [1, 2, 3]; let b: i32 = a[0]; let t: (i32, i32) = (1, 2); let c: i32 = t.0; }`)
	block := prog.Functions[0].Body.(*ast.Block)
	bLet := block.Stmts[1].(*ast.Let)
	_, ok := bLet.Init.(*ast.Index)
	assert.True(t, ok)
	cLet := block.Stmts[3].(*ast.Let)
	tg, ok := cLet.Init.(*ast.TupleGet)
	require.True(t, ok)
	assert.Equal(t, 0, tg.Index)
}

func TestParseAssignVsExprDisambiguation(t *testing.T) {
	prog := parseProgram(t, `fn f() { let mut x: i32 = 0; x = 1; x; }`)
	block := prog.Functions[0].Body.(*ast.Block)
	_, ok := block.Stmts[1].(*ast.Assign)
	assert.True(t, ok)
	_, ok = block.Stmts[2].(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestParseDeterminism(t *testing.T) {
	src := `fn main() -> i32 { let mut x: i32 = 0; while x < 10 { x = x + 1; } x }`
	a := parseProgram(t, src)
	b := parseProgram(t, src)
	assert.Equal(t, a, b)
}

func TestParseUnexpectedTokenError(t *testing.T) {
	_, err := parser.New(lexer.New(`fn f() { let x: i32 = ; }`)).Parse()
	require.Error(t, err)
	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseTypeForms(t *testing.T) {
	prog := parseProgram(t, `fn f(a: &i32, b: &mut i32, c: [i32; 4], d: (i32, i32)) { }`)
	params := prog.Functions[0].Params
	ref, ok := params[0].Type.(*ast.RefType)
	require.True(t, ok)
	assert.False(t, ref.Mut)
	refMut := params[1].Type.(*ast.RefType)
	assert.True(t, refMut.Mut)
	arr := params[2].Type.(*ast.ArrayType)
	assert.Equal(t, 4, arr.Size)
	tup := params[3].Type.(*ast.TupleType)
	assert.Len(t, tup.Elems, 2)
}
