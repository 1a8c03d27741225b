package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/malphas-lang/rustlite/internal/ast"
	"github.com/malphas-lang/rustlite/internal/diag"
)

// GenError is an internal invariant violation: a break or continue
// emitted with an empty loop stack, a non-range for iterable, an address
// taken of something other than a variable, or a node the generator has
// no lowering for. The checker rejects these programs first, but the
// generator still raises rather than emitting malformed IR.
type GenError struct {
	Message string
	Pos     int
}

func (e *GenError) Error() string { return e.Message }

func (e *GenError) ToDiagnostic(filename string) diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageIRGen,
		Severity: diag.SeverityError,
		Code:     diag.CodeIRGenUnboundJump,
		Message:  e.Message,
		Span:     diag.Span{Filename: filename, Start: e.Pos, End: e.Pos + 1},
	}
}

// loopContext is the (start, end) label pair visible to break/continue
// while lowering a loop's body.
type loopContext struct {
	start string
	end   string
}

// Gen lowers a validated AST into a flat instruction list. Each Gen
// instance owns its own temp/label counters and loop stack, reset by
// constructing a fresh Gen per compilation.
type Gen struct {
	quads       []Quadruple
	tempCount   int
	labelCount  int
	loopStack   []loopContext
	currentFunc string
}

// New creates an empty Gen.
func New() *Gen {
	return &Gen{}
}

func (g *Gen) newTemp() string {
	t := fmt.Sprintf("t%d", g.tempCount)
	g.tempCount++
	return t
}

func (g *Gen) newLabel() string {
	l := fmt.Sprintf("L%d", g.labelCount)
	g.labelCount++
	return l
}

func (g *Gen) emit(op, arg1, arg2, res string) {
	g.quads = append(g.quads, Quadruple{Op: op, Arg1: arg1, Arg2: arg2, Res: res})
}

// Gen lowers an entire program, returning the ordered quadruple list.
func (g *Gen) Gen(prog *ast.Program) ([]Quadruple, error) {
	g.quads = nil
	for _, fn := range prog.Functions {
		if err := g.genFunction(fn); err != nil {
			return nil, err
		}
	}
	return g.quads, nil
}

func (g *Gen) genFunction(fn *ast.Function) error {
	g.currentFunc = fn.Name
	g.emit(OpFunc, fn.Name, "", "")

	for i, p := range fn.Params {
		g.emit(OpParam, p.Name, "i32", strconv.Itoa(i))
	}

	if err := g.genFuncBody(fn.Body); err != nil {
		return err
	}

	if len(g.quads) == 0 || g.quads[len(g.quads)-1].Op != OpRet {
		g.emit(OpRet, "", "", "")
	}
	g.emit(OpEndFunc, fn.Name, "", "")
	g.currentFunc = ""
	return nil
}

func (g *Gen) genFuncBody(body ast.Node) error {
	if block, ok := body.(*ast.Block); ok {
		return g.genBlock(block)
	}
	_, err := g.genExpr(body.(ast.Expr))
	return err
}

func (g *Gen) genBlock(block *ast.Block) error {
	for _, stmt := range block.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gen) genBlockOrExpr(node ast.Node) error {
	if block, ok := node.(*ast.Block); ok {
		return g.genBlock(block)
	}
	_, err := g.genExpr(node.(ast.Expr))
	return err
}

func (g *Gen) genStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Let:
		return g.genLet(s)
	case *ast.Assign:
		return g.genAssign(s)
	case *ast.Return:
		return g.genReturn(s)
	case *ast.If:
		return g.genIfStmt(s)
	case *ast.While:
		return g.genWhileStmt(s)
	case *ast.For:
		return g.genForStmt(s)
	case *ast.Loop:
		return g.genLoopStmt(s)
	case *ast.Break:
		return g.genBreakStmt(s)
	case *ast.Continue:
		return g.genContinueStmt(s)
	case *ast.ExprStmt:
		_, err := g.genExpr(s.X)
		return err
	case *ast.Block:
		return g.genBlock(s)
	case *ast.Empty:
		return nil
	default:
		return &GenError{Message: fmt.Sprintf("unsupported statement %T", stmt), Pos: stmt.Pos()}
	}
}

func (g *Gen) genLet(stmt *ast.Let) error {
	if stmt.Init != nil {
		res, err := g.genExpr(stmt.Init)
		if err != nil {
			return err
		}
		g.emit(OpLet, stmt.Name, res, "")
		return nil
	}
	g.emit(OpLet, stmt.Name, "", "")
	return nil
}

func (g *Gen) genAssign(stmt *ast.Assign) error {
	value, err := g.genExpr(stmt.Value)
	if err != nil {
		return err
	}
	switch target := stmt.Target.(type) {
	case *ast.Variable:
		g.emit(OpAssign, target.Name, value, "")
	case *ast.Index:
		arr, err := g.genExpr(target.X)
		if err != nil {
			return err
		}
		idx, err := g.genExpr(target.Index)
		if err != nil {
			return err
		}
		g.emit(OpAStore, arr, idx, value)
	case *ast.TupleGet:
		tup, err := g.genExpr(target.X)
		if err != nil {
			return err
		}
		g.emit(OpTStore, tup, strconv.Itoa(target.Index), value)
	case *ast.Deref:
		ptr, err := g.genExpr(target.X)
		if err != nil {
			return err
		}
		g.emit(OpPStore, ptr, value, "")
	default:
		return &GenError{Message: fmt.Sprintf("unsupported assignment target %T", stmt.Target), Pos: stmt.Pos()}
	}
	return nil
}

func (g *Gen) genReturn(stmt *ast.Return) error {
	if stmt.Value != nil {
		res, err := g.genExpr(stmt.Value)
		if err != nil {
			return err
		}
		g.emit(OpRet, res, "", "")
		return nil
	}
	g.emit(OpRet, "", "", "")
	return nil
}

func (g *Gen) genIfStmt(stmt *ast.If) error {
	cond, err := g.genExpr(stmt.Cond)
	if err != nil {
		return err
	}
	labelElse := g.newLabel()
	labelEnd := g.newLabel()

	g.emit(OpIfZ, cond, "", labelElse)
	if err := g.genBlockOrExpr(stmt.Then); err != nil {
		return err
	}

	if stmt.Else != nil {
		g.emit(OpGoto, labelEnd, "", "")
		g.emit(OpLabel, labelElse, "", "")
		if err := g.genElseBranch(stmt.Else); err != nil {
			return err
		}
		g.emit(OpLabel, labelEnd, "", "")
	} else {
		g.emit(OpLabel, labelElse, "", "")
	}
	return nil
}

// genElseBranch lowers an If's else arm, which is nil, *Block, a bare
// Expr, or another *If chained from an `else if`.
func (g *Gen) genElseBranch(node ast.Node) error {
	if chained, ok := node.(*ast.If); ok {
		return g.genIfStmt(chained)
	}
	return g.genBlockOrExpr(node)
}

func (g *Gen) genWhileStmt(stmt *ast.While) error {
	labelStart := g.newLabel()
	labelCond := g.newLabel()
	labelEnd := g.newLabel()

	g.loopStack = append(g.loopStack, loopContext{start: labelCond, end: labelEnd})
	defer g.popLoop()

	g.emit(OpGoto, labelCond, "", "")
	g.emit(OpLabel, labelStart, "", "")
	if err := g.genBlockOrExpr(stmt.Body); err != nil {
		return err
	}

	g.emit(OpLabel, labelCond, "", "")
	cond, err := g.genExpr(stmt.Cond)
	if err != nil {
		return err
	}
	g.emit(OpIfNZ, cond, "", labelStart)
	g.emit(OpLabel, labelEnd, "", "")
	return nil
}

func (g *Gen) genForStmt(stmt *ast.For) error {
	rangeIter, ok := stmt.Iterable.(*ast.RangeIterable)
	if !ok {
		return &GenError{Message: "for-loop iterable must be a range", Pos: stmt.Pos()}
	}
	start, err := g.genExpr(rangeIter.Start)
	if err != nil {
		return err
	}
	end, err := g.genExpr(rangeIter.End)
	if err != nil {
		return err
	}

	labelCond := g.newLabel()
	labelBody := g.newLabel()
	labelEnd := g.newLabel()

	g.emit(OpAssign, stmt.Name, start, "")

	g.loopStack = append(g.loopStack, loopContext{start: labelCond, end: labelEnd})
	defer g.popLoop()

	g.emit(OpGoto, labelCond, "", "")
	g.emit(OpLabel, labelBody, "", "")
	if err := g.genBlockOrExpr(stmt.Body); err != nil {
		return err
	}
	g.emit(OpAdd, stmt.Name, "1", stmt.Name)

	g.emit(OpLabel, labelCond, "", "")
	condTemp := g.newTemp()
	g.emit(OpLt, stmt.Name, end, condTemp)
	g.emit(OpIfNZ, condTemp, "", labelBody)
	g.emit(OpLabel, labelEnd, "", "")
	return nil
}

func (g *Gen) genLoopStmt(stmt *ast.Loop) error {
	labelStart := g.newLabel()
	labelEnd := g.newLabel()

	g.loopStack = append(g.loopStack, loopContext{start: labelStart, end: labelEnd})
	defer g.popLoop()

	g.emit(OpLabel, labelStart, "", "")
	if err := g.genBlockOrExpr(stmt.Body); err != nil {
		return err
	}
	g.emit(OpGoto, labelStart, "", "")
	g.emit(OpLabel, labelEnd, "", "")
	return nil
}

func (g *Gen) genBreakStmt(stmt *ast.Break) error {
	if len(g.loopStack) == 0 {
		return &GenError{Message: "break emitted outside any loop", Pos: stmt.Pos()}
	}
	ctx := g.loopStack[len(g.loopStack)-1]

	if stmt.Value != nil {
		res, err := g.genExpr(stmt.Value)
		if err != nil {
			return err
		}
		breakResult := g.breakResultSlot()
		g.emit(OpAssign, breakResult, res, "")
	}
	g.emit(OpGoto, ctx.end, "", "")
	return nil
}

func (g *Gen) genContinueStmt(stmt *ast.Continue) error {
	if len(g.loopStack) == 0 {
		return &GenError{Message: "continue emitted outside any loop", Pos: stmt.Pos()}
	}
	ctx := g.loopStack[len(g.loopStack)-1]
	g.emit(OpGoto, ctx.start, "", "")
	return nil
}

func (g *Gen) popLoop() {
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

// breakResultSlot names the well-known variable a loop expression's break
// values are written through. Collides across nested loop-expressions in
// the same function; left as-is since this language has no nested
// loop-expression test surface yet.
func (g *Gen) breakResultSlot() string {
	return "break_result_" + g.currentFunc
}

func (g *Gen) genExpr(expr ast.Expr) (string, error) {
	if expr == nil {
		return "", nil
	}
	switch e := expr.(type) {
	case *ast.Number:
		return strconv.FormatInt(e.Value, 10), nil
	case *ast.Variable:
		return e.Name, nil
	case *ast.BinaryOp:
		left, err := g.genExpr(e.Left)
		if err != nil {
			return "", err
		}
		right, err := g.genExpr(e.Right)
		if err != nil {
			return "", err
		}
		tmp := g.newTemp()
		g.emit(e.Op, left, right, tmp)
		return tmp, nil
	case *ast.UnaryOp:
		val, err := g.genExpr(e.X)
		if err != nil {
			return "", err
		}
		tmp := g.newTemp()
		g.emit(e.Op, val, "", tmp)
		return tmp, nil
	case *ast.Deref:
		ptr, err := g.genExpr(e.X)
		if err != nil {
			return "", err
		}
		tmp := g.newTemp()
		g.emit(OpLoad, ptr, "", tmp)
		return tmp, nil
	case *ast.AddrOf:
		return g.genAddrOf(e.X, e.Pos())
	case *ast.AddrOfMut:
		return g.genAddrOf(e.X, e.Pos())
	case *ast.Call:
		return g.genCall(e)
	case *ast.Index:
		arr, err := g.genExpr(e.X)
		if err != nil {
			return "", err
		}
		idx, err := g.genExpr(e.Index)
		if err != nil {
			return "", err
		}
		tmp := g.newTemp()
		g.emit(OpALoad, arr, idx, tmp)
		return tmp, nil
	case *ast.TupleGet:
		tup, err := g.genExpr(e.X)
		if err != nil {
			return "", err
		}
		tmp := g.newTemp()
		g.emit(OpTLoad, tup, strconv.Itoa(e.Index), tmp)
		return tmp, nil
	case *ast.Tuple:
		return g.genAggregate(OpTuple, e.Elems)
	case *ast.Array:
		return g.genAggregate(OpArray, e.Elems)
	case *ast.IfExpr:
		return g.genIfExpr(e)
	case *ast.LoopExpr:
		return g.genLoopExpr(e)
	case *ast.Block:
		return g.genExprBlock(e)
	default:
		return "", &GenError{Message: fmt.Sprintf("unsupported expression %T", expr), Pos: expr.Pos()}
	}
}

func (g *Gen) genAddrOf(target ast.Expr, pos int) (string, error) {
	variable, ok := target.(*ast.Variable)
	if !ok {
		return "", &GenError{Message: "can only take the address of a variable", Pos: pos}
	}
	tmp := g.newTemp()
	g.emit(OpAddr, variable.Name, "", tmp)
	return tmp, nil
}

func (g *Gen) genCall(e *ast.Call) (string, error) {
	var args []string
	for i, arg := range e.Args {
		val, err := g.genExpr(arg)
		if err != nil {
			return "", err
		}
		g.emit(OpArg, val, "", strconv.Itoa(i))
		args = append(args, val)
	}
	funcName := ""
	if variable, ok := e.Callee.(*ast.Variable); ok {
		funcName = variable.Name
	} else {
		val, err := g.genExpr(e.Callee)
		if err != nil {
			return "", err
		}
		funcName = val
	}
	tmp := g.newTemp()
	g.emit(OpCall, funcName, strconv.Itoa(len(args)), tmp)
	return tmp, nil
}

func (g *Gen) genAggregate(op string, elems []ast.Expr) (string, error) {
	vals := make([]string, 0, len(elems))
	for _, e := range elems {
		v, err := g.genExpr(e)
		if err != nil {
			return "", err
		}
		vals = append(vals, v)
	}
	tmp := g.newTemp()
	g.emit(op, strconv.Itoa(len(vals)), strings.Join(vals, ","), tmp)
	return tmp, nil
}

func (g *Gen) genIfExpr(e *ast.IfExpr) (string, error) {
	cond, err := g.genExpr(e.Cond)
	if err != nil {
		return "", err
	}
	labelElse := g.newLabel()
	labelEnd := g.newLabel()
	result := g.newTemp()

	g.emit(OpIfZ, cond, "", labelElse)
	thenResult, err := g.genNodeAsExpr(e.Then)
	if err != nil {
		return "", err
	}
	g.emit(OpAssign, result, thenResult, "")
	g.emit(OpGoto, labelEnd, "", "")

	g.emit(OpLabel, labelElse, "", "")
	elseResult, err := g.genNodeAsExpr(e.Else)
	if err != nil {
		return "", err
	}
	g.emit(OpAssign, result, elseResult, "")

	g.emit(OpLabel, labelEnd, "", "")
	return result, nil
}

func (g *Gen) genLoopExpr(e *ast.LoopExpr) (string, error) {
	labelStart := g.newLabel()
	labelEnd := g.newLabel()
	result := g.newTemp()

	breakResult := g.breakResultSlot()
	g.emit(OpLet, breakResult, "", "")

	g.loopStack = append(g.loopStack, loopContext{start: labelStart, end: labelEnd})
	defer g.popLoop()

	g.emit(OpLabel, labelStart, "", "")
	if err := g.genBlockOrExpr(e.Body); err != nil {
		return "", err
	}
	g.emit(OpGoto, labelStart, "", "")

	g.emit(OpLabel, labelEnd, "", "")
	g.emit(OpAssign, result, breakResult, "")
	return result, nil
}

func (g *Gen) genExprBlock(b *ast.Block) (string, error) {
	result := ""
	for i, stmt := range b.Stmts {
		if exprStmt, ok := stmt.(*ast.ExprStmt); ok && exprStmt.Tail && i == len(b.Stmts)-1 {
			res, err := g.genExpr(exprStmt.X)
			if err != nil {
				return "", err
			}
			result = res
			continue
		}
		if err := g.genStmt(stmt); err != nil {
			return "", err
		}
	}
	return result, nil
}

// genNodeAsExpr lowers a block_or_expr node used in value position.
func (g *Gen) genNodeAsExpr(node ast.Node) (string, error) {
	if block, ok := node.(*ast.Block); ok {
		return g.genExprBlock(block)
	}
	return g.genExpr(node.(ast.Expr))
}
