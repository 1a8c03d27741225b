package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malphas-lang/rustlite/internal/ast"
	"github.com/malphas-lang/rustlite/internal/diag"
	"github.com/malphas-lang/rustlite/internal/lexer"
	"github.com/malphas-lang/rustlite/internal/parser"
)

var (
	parseEval     string
	parseDumpTree bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file and print its function signatures, or the full tree with --dump-ast",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading from a file")
	parseCmd.Flags().BoolVar(&parseDumpTree, "dump-ast", false, "print the full parsed tree")
}

func runParse(cmd *cobra.Command, args []string) error {
	src, filename, err := readInput(args, parseEval)
	if err != nil {
		return err
	}

	l := lexer.New(src)
	l.SetFilename(filename)
	prog, perr := parser.New(l).Parse()
	if perr != nil {
		formatter := diag.NewFormatter()
		formatter.LoadSource(filename, src)
		if pe, ok := perr.(*parser.ParseError); ok {
			formatter.Format(pe.ToDiagnostic(filename))
		}
		return fmt.Errorf("parse failed: %w", perr)
	}

	if parseDumpTree {
		dumpProgram(prog, 0)
		return nil
	}

	for _, fn := range prog.Functions {
		fmt.Printf("fn %s(%d params)\n", fn.Name, len(fn.Params))
	}
	return nil
}

func indent(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "  "
	}
	return s
}

func dumpProgram(prog *ast.Program, depth int) {
	fmt.Printf("%sProgram (%d functions)\n", indent(depth), len(prog.Functions))
	for _, fn := range prog.Functions {
		fmt.Printf("%sFunction %s\n", indent(depth+1), fn.Name)
		for _, p := range fn.Params {
			fmt.Printf("%sParam %s\n", indent(depth+2), p.Name)
		}
		dumpNode(fn.Body, depth+2)
	}
}

func dumpNode(node ast.Node, depth int) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.Block:
		fmt.Printf("%sBlock (%d statements)\n", indent(depth), len(n.Stmts))
		for _, s := range n.Stmts {
			dumpNode(s, depth+1)
		}
	case *ast.Let:
		fmt.Printf("%sLet %s (mut=%v)\n", indent(depth), n.Name, n.Mut)
		dumpNode(n.Init, depth+1)
	case *ast.Assign:
		fmt.Printf("%sAssign\n", indent(depth))
		dumpNode(n.Target, depth+1)
		dumpNode(n.Value, depth+1)
	case *ast.Return:
		fmt.Printf("%sReturn\n", indent(depth))
		dumpNode(n.Value, depth+1)
	case *ast.If:
		fmt.Printf("%sIf\n", indent(depth))
		dumpNode(n.Cond, depth+1)
		dumpNode(n.Then, depth+1)
		dumpNode(n.Else, depth+1)
	case *ast.IfExpr:
		fmt.Printf("%sIfExpr\n", indent(depth))
		dumpNode(n.Cond, depth+1)
		dumpNode(n.Then, depth+1)
		dumpNode(n.Else, depth+1)
	case *ast.While:
		fmt.Printf("%sWhile\n", indent(depth))
		dumpNode(n.Cond, depth+1)
		dumpNode(n.Body, depth+1)
	case *ast.For:
		fmt.Printf("%sFor %s\n", indent(depth), n.Name)
		dumpNode(n.Body, depth+1)
	case *ast.Loop:
		fmt.Printf("%sLoop\n", indent(depth))
		dumpNode(n.Body, depth+1)
	case *ast.LoopExpr:
		fmt.Printf("%sLoopExpr\n", indent(depth))
		dumpNode(n.Body, depth+1)
	case *ast.Break:
		fmt.Printf("%sBreak\n", indent(depth))
		dumpNode(n.Value, depth+1)
	case *ast.Continue:
		fmt.Printf("%sContinue\n", indent(depth))
	case *ast.ExprStmt:
		fmt.Printf("%sExprStmt (tail=%v)\n", indent(depth), n.Tail)
		dumpNode(n.X, depth+1)
	case *ast.Empty:
		fmt.Printf("%sEmpty\n", indent(depth))
	case *ast.Number:
		fmt.Printf("%sNumber %d\n", indent(depth), n.Value)
	case *ast.Variable:
		fmt.Printf("%sVariable %s\n", indent(depth), n.Name)
	case *ast.BinaryOp:
		fmt.Printf("%sBinaryOp %s\n", indent(depth), n.Op)
		dumpNode(n.Left, depth+1)
		dumpNode(n.Right, depth+1)
	case *ast.UnaryOp:
		fmt.Printf("%sUnaryOp %s\n", indent(depth), n.Op)
		dumpNode(n.X, depth+1)
	case *ast.AddrOf:
		fmt.Printf("%sAddrOf\n", indent(depth))
		dumpNode(n.X, depth+1)
	case *ast.AddrOfMut:
		fmt.Printf("%sAddrOfMut\n", indent(depth))
		dumpNode(n.X, depth+1)
	case *ast.Deref:
		fmt.Printf("%sDeref\n", indent(depth))
		dumpNode(n.X, depth+1)
	case *ast.Call:
		fmt.Printf("%sCall\n", indent(depth))
		dumpNode(n.Callee, depth+1)
		for _, a := range n.Args {
			dumpNode(a, depth+1)
		}
	case *ast.Index:
		fmt.Printf("%sIndex\n", indent(depth))
		dumpNode(n.X, depth+1)
		dumpNode(n.Index, depth+1)
	case *ast.TupleGet:
		fmt.Printf("%sTupleGet .%d\n", indent(depth), n.Index)
		dumpNode(n.X, depth+1)
	case *ast.Array:
		fmt.Printf("%sArray (%d elems)\n", indent(depth), len(n.Elems))
		for _, e := range n.Elems {
			dumpNode(e, depth+1)
		}
	case *ast.Tuple:
		fmt.Printf("%sTuple (%d elems)\n", indent(depth), len(n.Elems))
		for _, e := range n.Elems {
			dumpNode(e, depth+1)
		}
	default:
		fmt.Printf("%s%T\n", indent(depth), node)
	}
}
