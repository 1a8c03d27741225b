package types

import (
	"fmt"

	"github.com/malphas-lang/rustlite/internal/ast"
	"github.com/malphas-lang/rustlite/internal/diag"
)

// CheckError is raised by any typing, mutability, initialization, or
// aliasing rule violation. It carries the offending source position, the
// diagnostic code for the specific rule that fired, and a human-readable
// message naming the offending name and mismatch.
type CheckError struct {
	Message string
	Pos     int
	Code    diag.Code
}

func (e *CheckError) Error() string { return e.Message }

// ToDiagnostic converts the error into the shared diagnostic model, using
// the code recorded at the errAt/errAtCode call site that raised it.
func (e *CheckError) ToDiagnostic(filename string) diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageChecker,
		Severity: diag.SeverityError,
		Code:     e.Code,
		Message:  e.Message,
		Span:     diag.Span{Filename: filename, Start: e.Pos, End: e.Pos + 1},
	}
}

// errAt raises a generic type-mismatch-shaped violation. Rules with a more
// specific diagnostic code go through errAtCode instead.
func errAt(pos int, format string, args ...any) *CheckError {
	return errAtCode(pos, diag.CodeCheckerTypeMismatch, format, args...)
}

func errAtCode(pos int, code diag.Code, format string, args ...any) *CheckError {
	return &CheckError{Message: fmt.Sprintf(format, args...), Pos: pos, Code: code}
}

// Checker walks the AST maintaining a stack of scopes (via the Scope
// linked list), a function table, and a loop-depth counter for break and
// continue placement.
type Checker struct {
	scope     *Scope
	functions map[string]*FuncSignature
	loopDepth int
}

// New creates an empty Checker.
func New() *Checker {
	return &Checker{functions: make(map[string]*FuncSignature)}
}

// Check runs both passes over the program: registering every function
// signature, then checking every function body. Registering signatures
// first lets functions call each other regardless of declaration order.
func (c *Checker) Check(prog *ast.Program) error {
	for _, fn := range prog.Functions {
		if err := c.registerFunction(fn); err != nil {
			return err
		}
	}
	for _, fn := range prog.Functions {
		if err := c.checkFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) registerFunction(fn *ast.Function) error {
	sig := &FuncSignature{}
	for _, p := range fn.Params {
		t, err := c.resolveType(p.Type)
		if err != nil {
			return err
		}
		sig.Params = append(sig.Params, t)
	}
	if fn.ReturnType != nil {
		t, err := c.resolveType(fn.ReturnType)
		if err != nil {
			return err
		}
		sig.Return = t
	}
	c.functions[fn.Name] = sig
	return nil
}

func (c *Checker) checkFunction(fn *ast.Function) error {
	c.pushScope()
	defer c.popScope()

	for _, p := range fn.Params {
		typ, err := c.resolveType(p.Type)
		if err != nil {
			return err
		}
		if typ == nil {
			return errAt(p.Pos(), "parameter %s must have an explicit type", p.Name)
		}
		c.scope.Define(&Symbol{Name: p.Name, Type: typ, Mut: p.Mut, Inited: true})
	}

	var retType Type
	if fn.ReturnType != nil {
		t, err := c.resolveType(fn.ReturnType)
		if err != nil {
			return err
		}
		retType = t
	}

	return c.checkFuncBody(fn.Body, retType, fn.Name)
}

// checkFuncBody checks a block body, or a bare tail expression per
// func_body := block | expr.
func (c *Checker) checkFuncBody(body ast.Node, retType Type, funcName string) error {
	if block, ok := body.(*ast.Block); ok {
		return c.checkBlock(block, retType, funcName)
	}
	_, err := c.checkExpr(body.(ast.Expr))
	return err
}

func (c *Checker) pushScope() { c.scope = NewScope(c.scope) }
func (c *Checker) popScope()  { c.scope = c.scope.Parent }

func (c *Checker) checkBlock(block *ast.Block, retType Type, funcName string) error {
	c.pushScope()
	defer c.popScope()

	for _, stmt := range block.Stmts {
		if err := c.checkStmt(stmt, retType, funcName); err != nil {
			return err
		}
	}
	for name, sym := range c.scope.Symbols {
		if sym.Type == nil {
			return errAt(block.Pos(), "variable %s's type could not be inferred", name)
		}
	}
	return nil
}

// checkBlockOrExpr handles the `block_or_expr` grammar production shared
// by if/while/for/loop bodies.
func (c *Checker) checkBlockOrExpr(node ast.Node, retType Type, funcName string) error {
	if block, ok := node.(*ast.Block); ok {
		return c.checkBlock(block, retType, funcName)
	}
	_, err := c.checkExpr(node.(ast.Expr))
	return err
}

func (c *Checker) checkStmt(stmt ast.Stmt, retType Type, funcName string) error {
	switch s := stmt.(type) {
	case *ast.Let:
		return c.checkLet(s)
	case *ast.Assign:
		return c.checkAssign(s)
	case *ast.Return:
		return c.checkReturn(s, retType, funcName)
	case *ast.Break:
		if c.loopDepth <= 0 {
			return errAtCode(s.Pos(), diag.CodeCheckerControlFlowMisuse, "break must appear inside a loop")
		}
		if s.Value != nil {
			if _, err := c.checkExpr(s.Value); err != nil {
				return err
			}
		}
		return nil
	case *ast.Continue:
		if c.loopDepth <= 0 {
			return errAtCode(s.Pos(), diag.CodeCheckerControlFlowMisuse, "continue must appear inside a loop")
		}
		return nil
	case *ast.While:
		c.loopDepth++
		defer func() { c.loopDepth-- }()
		if _, err := c.checkExpr(s.Cond); err != nil {
			return err
		}
		return c.checkBlockOrExpr(s.Body, retType, funcName)
	case *ast.Loop:
		c.loopDepth++
		defer func() { c.loopDepth-- }()
		return c.checkBlockOrExpr(s.Body, retType, funcName)
	case *ast.For:
		c.loopDepth++
		defer func() { c.loopDepth-- }()
		return c.checkFor(s, retType, funcName)
	case *ast.ExprStmt:
		_, err := c.checkExpr(s.X)
		return err
	case *ast.If:
		return c.checkIf(s, retType, funcName)
	case *ast.Block:
		return c.checkBlock(s, retType, funcName)
	case *ast.Empty:
		return nil
	default:
		return errAt(stmt.Pos(), "unsupported statement %T", stmt)
	}
}

func (c *Checker) checkLet(stmt *ast.Let) error {
	var declared Type
	if stmt.Type != nil {
		t, err := c.resolveType(stmt.Type)
		if err != nil {
			return err
		}
		declared = t
	}
	if stmt.Init != nil {
		exprType, err := c.checkExpr(stmt.Init)
		if err != nil {
			return err
		}
		if declared != nil && !Equal(exprType, declared) {
			return errAt(stmt.Pos(), "variable %s declared as %s but initializer has type %s", stmt.Name, declared, exprType)
		}
		typ := declared
		if typ == nil {
			typ = exprType
		}
		c.scope.Define(&Symbol{Name: stmt.Name, Type: typ, Mut: stmt.Mut, Inited: true})
		return nil
	}
	c.scope.Define(&Symbol{Name: stmt.Name, Type: declared, Mut: stmt.Mut, Inited: false})
	return nil
}

func (c *Checker) checkAssign(stmt *ast.Assign) error {
	switch target := stmt.Target.(type) {
	case *ast.TupleGet:
		return c.checkTupleAssign(target, stmt.Value)
	case *ast.Variable:
		sym := c.scope.Resolve(target.Name)
		if sym == nil {
			return errAtCode(target.Pos(), diag.CodeCheckerUndeclared, "variable %s is not declared", target.Name)
		}
		if !sym.Mut && sym.Inited {
			return errAtCode(stmt.Pos(), diag.CodeCheckerNotMutable, "variable %s is not mutable", target.Name)
		}
		valType, err := c.checkExpr(stmt.Value)
		if err != nil {
			return err
		}
		if sym.Type == nil {
			sym.Type = valType
		} else if !Equal(valType, sym.Type) {
			return errAt(stmt.Pos(), "variable %s has type %s but assigned value has type %s", target.Name, sym.Type, valType)
		}
		sym.Inited = true
		return nil
	case *ast.Index:
		return c.checkIndexAssign(target, stmt.Value)
	case *ast.Deref:
		targetType, err := c.checkExpr(target)
		if err != nil {
			return err
		}
		valType, err := c.checkExpr(stmt.Value)
		if err != nil {
			return err
		}
		if !Equal(valType, targetType) {
			return errAt(stmt.Pos(), "dereferenced target has type %s but assigned value has type %s", targetType, valType)
		}
		return nil
	default:
		return errAtCode(stmt.Pos(), diag.CodeCheckerBadLvalue, "assignment target must be a variable, array index, tuple field, or dereference")
	}
}

// checkTupleAssign validates `a.N = value` as its own path, distinct from
// the generic lvalue check, mirroring the original's dedicated handling of
// TupleGet assignment targets.
func (c *Checker) checkTupleAssign(target *ast.TupleGet, value ast.Expr) error {
	variable, ok := target.X.(*ast.Variable)
	if !ok {
		return errAtCode(target.Pos(), diag.CodeCheckerBadLvalue, "only a variable's tuple members can be assigned")
	}
	sym := c.scope.Resolve(variable.Name)
	if sym == nil {
		return errAtCode(variable.Pos(), diag.CodeCheckerUndeclared, "variable %s is not declared", variable.Name)
	}
	if !sym.Mut {
		return errAtCode(target.Pos(), diag.CodeCheckerNotMutable, "variable %s is not mutable, its members cannot be assigned", variable.Name)
	}
	tup, ok := sym.Type.(Tuple)
	if !ok {
		return errAt(target.Pos(), "variable %s is not a tuple type", variable.Name)
	}
	if target.Index < 0 || target.Index >= len(tup.Elems) {
		return errAtCode(target.Pos(), diag.CodeCheckerIndexOutOfRange, "tuple index %d out of range [0,%d]", target.Index, len(tup.Elems)-1)
	}
	memberType := tup.Elems[target.Index]
	valType, err := c.checkExpr(value)
	if err != nil {
		return err
	}
	if !Equal(valType, memberType) {
		return errAt(target.Pos(), "tuple %s member %d has type %s but assigned value has type %s", variable.Name, target.Index, memberType, valType)
	}
	return nil
}

func (c *Checker) checkIndexAssign(target *ast.Index, value ast.Expr) error {
	variable, ok := target.X.(*ast.Variable)
	if !ok {
		return errAtCode(target.Pos(), diag.CodeCheckerBadLvalue, "only a variable's array elements can be assigned")
	}
	sym := c.scope.Resolve(variable.Name)
	if sym == nil {
		return errAtCode(variable.Pos(), diag.CodeCheckerUndeclared, "variable %s is not declared", variable.Name)
	}
	if !sym.Mut {
		return errAtCode(target.Pos(), diag.CodeCheckerNotMutable, "variable %s is not mutable, its elements cannot be assigned", variable.Name)
	}
	idxType, err := c.checkExpr(target.Index)
	if err != nil {
		return err
	}
	if !Equal(idxType, I32{}) {
		return errAt(target.Index.Pos(), "array index must be i32, got %s", idxType)
	}
	arr, ok := sym.Type.(Array)
	if !ok {
		return errAt(target.Pos(), "variable %s is not an array type, cannot be indexed for assignment", variable.Name)
	}
	if err := c.checkIndexBounds(target.Index, sym.Type); err != nil {
		return err
	}
	valType, err := c.checkExpr(value)
	if err != nil {
		return err
	}
	if !Equal(valType, arr.Elem) {
		return errAt(target.Pos(), "array %s has element type %s but assigned value has type %s", variable.Name, arr.Elem, valType)
	}
	return nil
}

func (c *Checker) checkReturn(stmt *ast.Return, retType Type, funcName string) error {
	if retType != nil {
		if stmt.Value == nil {
			return errAtCode(stmt.Pos(), diag.CodeCheckerReturnMismatch, "function %s declares return type %s but return has no value", funcName, retType)
		}
		actual, err := c.checkExpr(stmt.Value)
		if err != nil {
			return err
		}
		if !Equal(actual, retType) {
			return errAtCode(stmt.Pos(), diag.CodeCheckerReturnMismatch, "function %s declares return type %s but return has type %s", funcName, retType, actual)
		}
		return nil
	}
	if stmt.Value != nil {
		actual, err := c.checkExpr(stmt.Value)
		if err != nil {
			return err
		}
		return errAtCode(stmt.Pos(), diag.CodeCheckerReturnMismatch, "function %s declares no return value but return has a value of type %s", funcName, actual)
	}
	return nil
}

func (c *Checker) checkFor(stmt *ast.For, retType Type, funcName string) error {
	c.pushScope()
	defer c.popScope()

	rangeIter, ok := stmt.Iterable.(*ast.RangeIterable)
	if !ok {
		return errAt(stmt.Iterable.Pos(), "only range iterables (start..end) are supported")
	}
	startType, err := c.checkExpr(rangeIter.Start)
	if err != nil {
		return err
	}
	if !Equal(startType, I32{}) {
		return errAt(rangeIter.Start.Pos(), "range start must be i32, got %s", startType)
	}
	endType, err := c.checkExpr(rangeIter.End)
	if err != nil {
		return err
	}
	if !Equal(endType, I32{}) {
		return errAt(rangeIter.End.Pos(), "range end must be i32, got %s", endType)
	}

	c.scope.Define(&Symbol{Name: stmt.Name, Type: I32{}, Mut: stmt.Mut, Inited: true})
	return c.checkBlockOrExpr(stmt.Body, retType, funcName)
}

func (c *Checker) checkIf(stmt *ast.If, retType Type, funcName string) error {
	if _, err := c.checkExpr(stmt.Cond); err != nil {
		return err
	}
	if err := c.checkBlockOrExpr(stmt.Then, retType, funcName); err != nil {
		return err
	}
	if stmt.Else == nil {
		return nil
	}
	switch els := stmt.Else.(type) {
	case *ast.If:
		return c.checkIf(els, retType, funcName)
	default:
		return c.checkBlockOrExpr(els, retType, funcName)
	}
}

func (c *Checker) checkExpr(expr ast.Expr) (Type, error) {
	switch e := expr.(type) {
	case *ast.Number:
		return I32{}, nil
	case *ast.Variable:
		sym := c.scope.Resolve(e.Name)
		if sym == nil {
			return nil, errAtCode(e.Pos(), diag.CodeCheckerUndeclared, "variable %s is not declared", e.Name)
		}
		if sym.Type == nil {
			return nil, errAt(e.Pos(), "variable %s's type could not be inferred", e.Name)
		}
		if !sym.Inited {
			return nil, errAtCode(e.Pos(), diag.CodeCheckerUninitialized, "variable %s is uninitialized", e.Name)
		}
		return sym.Type, nil
	case *ast.BinaryOp:
		return c.checkBinaryOp(e)
	case *ast.UnaryOp:
		valType, err := c.checkExpr(e.X)
		if err != nil {
			return nil, err
		}
		if e.Op == "-" && !Equal(valType, I32{}) {
			return nil, errAt(e.Pos(), "unary minus operand must be i32, got %s", valType)
		}
		return valType, nil
	case *ast.AddrOf:
		return c.checkAddrOf(e)
	case *ast.AddrOfMut:
		return c.checkAddrOfMut(e)
	case *ast.Deref:
		innerType, err := c.checkExpr(e.X)
		if err != nil {
			return nil, err
		}
		ref, ok := innerType.(Ref)
		if !ok {
			return nil, errAt(e.Pos(), "dereference operator * requires a reference type, got %s", innerType)
		}
		return ref.To, nil
	case *ast.Call:
		return c.checkCall(e)
	case *ast.Index:
		return c.checkIndex(e)
	case *ast.TupleGet:
		return c.checkTupleGet(e)
	case *ast.Array:
		return c.checkArray(e)
	case *ast.Tuple:
		return c.checkTuple(e)
	case *ast.IfExpr:
		return c.checkIfExpr(e)
	case *ast.LoopExpr:
		return c.checkLoopExpr(e)
	case *ast.Block:
		return c.checkExprBlock(e)
	default:
		return nil, errAt(expr.Pos(), "unsupported expression %T", expr)
	}
}

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}

func (c *Checker) checkBinaryOp(e *ast.BinaryOp) (Type, error) {
	lt, err := c.checkExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rt, err := c.checkExpr(e.Right)
	if err != nil {
		return nil, err
	}
	if !Equal(lt, rt) {
		return nil, errAt(e.Pos(), "binary operand types differ: %s vs %s", lt, rt)
	}
	if comparisonOps[e.Op] {
		// Comparisons conflate booleans and i32: the result is always i32
		// with value 0/1.
		return I32{}, nil
	}
	return lt, nil
}

func (c *Checker) checkAddrOf(e *ast.AddrOf) (Type, error) {
	variable, ok := e.X.(*ast.Variable)
	if !ok {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerBadLvalue, "can only take a reference to a variable")
	}
	sym := c.scope.Resolve(variable.Name)
	if sym == nil {
		return nil, errAtCode(variable.Pos(), diag.CodeCheckerUndeclared, "variable %s is not declared", variable.Name)
	}
	if sym.HasLiveMut() {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerAliasConflict, "cannot create an immutable reference to %s, a mutable reference already exists", variable.Name)
	}
	sym.Refs = append(sym.Refs, RefImm)
	innerType, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}
	return Ref{Mut: false, To: innerType}, nil
}

func (c *Checker) checkAddrOfMut(e *ast.AddrOfMut) (Type, error) {
	variable, ok := e.X.(*ast.Variable)
	if !ok {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerBadLvalue, "can only take a reference to a variable")
	}
	sym := c.scope.Resolve(variable.Name)
	if sym == nil {
		return nil, errAtCode(variable.Pos(), diag.CodeCheckerUndeclared, "variable %s is not declared", variable.Name)
	}
	if !sym.Mut {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerNotMutable, "can only create a mutable reference from a mutable variable, %s is not mutable", variable.Name)
	}
	if len(sym.Refs) > 0 {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerAliasConflict, "cannot create a mutable reference to %s, another reference already exists", variable.Name)
	}
	sym.Refs = append(sym.Refs, RefMut)
	innerType, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}
	return Ref{Mut: true, To: innerType}, nil
}

func (c *Checker) checkCall(e *ast.Call) (Type, error) {
	callee, ok := e.Callee.(*ast.Variable)
	if !ok {
		return nil, errAt(e.Pos(), "unsupported call form, callee must be a function name")
	}
	sig, ok := c.functions[callee.Name]
	if !ok {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerUndeclared, "function %s is not declared", callee.Name)
	}
	if len(e.Args) != len(sig.Params) {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerArityMismatch, "function %s expects %d arguments, got %d", callee.Name, len(sig.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		argType, err := c.checkExpr(arg)
		if err != nil {
			return nil, err
		}
		if !Equal(argType, sig.Params[i]) {
			return nil, errAt(arg.Pos(), "function %s argument %d expects type %s, got %s", callee.Name, i+1, sig.Params[i], argType)
		}
	}
	return sig.Return, nil
}

func (c *Checker) checkIndex(e *ast.Index) (Type, error) {
	containerType, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}
	idxType, err := c.checkExpr(e.Index)
	if err != nil {
		return nil, err
	}
	if !Equal(idxType, I32{}) {
		return nil, errAt(e.Index.Pos(), "array or tuple index must be i32, got %s", idxType)
	}
	if err := c.checkIndexBounds(e.Index, containerType); err != nil {
		return nil, err
	}
	switch ct := containerType.(type) {
	case Array:
		return ct.Elem, nil
	case Tuple:
		num, ok := e.Index.(*ast.Number)
		if !ok {
			return nil, errAt(e.Pos(), "tuple index must be a literal integer")
		}
		if int(num.Value) >= len(ct.Elems) {
			return nil, errAtCode(e.Pos(), diag.CodeCheckerIndexOutOfRange, "tuple index out of range")
		}
		return ct.Elems[num.Value], nil
	default:
		return nil, errAt(e.Pos(), "type %s does not support indexing", containerType)
	}
}

func (c *Checker) checkTupleGet(e *ast.TupleGet) (Type, error) {
	tupType, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}
	tup, ok := tupType.(Tuple)
	if !ok {
		return nil, errAt(e.Pos(), "the .N accessor can only be used on a tuple type, got %s", tupType)
	}
	if e.Index < 0 || e.Index >= len(tup.Elems) {
		return nil, errAtCode(e.Pos(), diag.CodeCheckerIndexOutOfRange, "tuple index %d out of range [0,%d]", e.Index, len(tup.Elems)-1)
	}
	return tup.Elems[e.Index], nil
}

func (c *Checker) checkArray(e *ast.Array) (Type, error) {
	if len(e.Elems) == 0 {
		return nil, errAt(e.Pos(), "array literal must not be empty")
	}
	var first Type
	for i, elem := range e.Elems {
		t, err := c.checkExpr(elem)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = t
			continue
		}
		if !Equal(t, first) {
			return nil, errAt(elem.Pos(), "array element types differ: %s vs %s", first, t)
		}
	}
	return Array{Elem: first, Size: len(e.Elems)}, nil
}

func (c *Checker) checkTuple(e *ast.Tuple) (Type, error) {
	var elems []Type
	for _, elem := range e.Elems {
		t, err := c.checkExpr(elem)
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
	}
	return Tuple{Elems: elems}, nil
}

// checkIfExpr checks the expression form of if. Both arms are required
// (enforced by the parser) and must agree on type so the whole expression
// is well-typed.
func (c *Checker) checkIfExpr(e *ast.IfExpr) (Type, error) {
	if _, err := c.checkExpr(e.Cond); err != nil {
		return nil, err
	}
	thenType, err := c.checkNodeAsExpr(e.Then)
	if err != nil {
		return nil, err
	}
	elseType, err := c.checkNodeAsExpr(e.Else)
	if err != nil {
		return nil, err
	}
	if thenType != nil && elseType != nil && !Equal(thenType, elseType) {
		return nil, errAt(e.Pos(), "if-expression arms have different types: %s vs %s", thenType, elseType)
	}
	return thenType, nil
}

// checkLoopExpr checks the expression form of loop. The expression is
// always typed i32: checkStmt's Break case checks each break value as an
// expression, but its type is not compared with i32 or with the other
// break values of the same loop.
func (c *Checker) checkLoopExpr(e *ast.LoopExpr) (Type, error) {
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	if _, err := c.checkNodeAsExpr(e.Body); err != nil {
		return nil, err
	}
	return I32{}, nil
}

func (c *Checker) checkExprBlock(b *ast.Block) (Type, error) {
	c.pushScope()
	defer c.popScope()

	var tailType Type = Tuple{}
	for i, stmt := range b.Stmts {
		if exprStmt, ok := stmt.(*ast.ExprStmt); ok && exprStmt.Tail && i == len(b.Stmts)-1 {
			t, err := c.checkExpr(exprStmt.X)
			if err != nil {
				return nil, err
			}
			tailType = t
			continue
		}
		if err := c.checkStmt(stmt, nil, ""); err != nil {
			return nil, err
		}
	}
	return tailType, nil
}

// checkNodeAsExpr checks a block_or_expr node used in value position,
// returning the block's tail type (or the unit tuple type `()` if the
// block has no tail expression) or the bare expression's type.
func (c *Checker) checkNodeAsExpr(node ast.Node) (Type, error) {
	if block, ok := node.(*ast.Block); ok {
		return c.checkExprBlock(block)
	}
	return c.checkExpr(node.(ast.Expr))
}

func (c *Checker) checkIndexBounds(indexExpr ast.Expr, containerType Type) error {
	num, ok := indexExpr.(*ast.Number)
	if !ok {
		return nil
	}
	idx := int(num.Value)
	switch ct := containerType.(type) {
	case Array:
		if idx < 0 || idx >= ct.Size {
			return errAtCode(indexExpr.Pos(), diag.CodeCheckerIndexOutOfRange, "array index %d out of range [0,%d]", idx, ct.Size-1)
		}
	case Tuple:
		if idx < 0 || idx >= len(ct.Elems) {
			return errAtCode(indexExpr.Pos(), diag.CodeCheckerIndexOutOfRange, "tuple index %d out of range [0,%d]", idx, len(ct.Elems)-1)
		}
	}
	return nil
}

// resolveType converts a parsed ast.TypeExpr into a checker Type.
func (c *Checker) resolveType(t ast.TypeExpr) (Type, error) {
	if t == nil {
		return nil, nil
	}
	switch tt := t.(type) {
	case *ast.PrimitiveType:
		return I32{}, nil
	case *ast.RefType:
		to, err := c.resolveType(tt.To)
		if err != nil {
			return nil, err
		}
		return Ref{Mut: tt.Mut, To: to}, nil
	case *ast.ArrayType:
		elem, err := c.resolveType(tt.Elem)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem, Size: tt.Size}, nil
	case *ast.TupleType:
		var elems []Type
		for _, e := range tt.Elems {
			et, err := c.resolveType(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, et)
		}
		return Tuple{Elems: elems}, nil
	default:
		return nil, errAt(t.Pos(), "unsupported type form %T", t)
	}
}
