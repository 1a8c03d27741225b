package ir_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/rustlite/internal/ast"
	"github.com/malphas-lang/rustlite/internal/ir"
	"github.com/malphas-lang/rustlite/internal/lexer"
	"github.com/malphas-lang/rustlite/internal/parser"
)

func genQuads(t *testing.T, src string) []ir.Quadruple {
	t.Helper()
	prog, err := parser.New(lexer.New(src)).Parse()
	require.NoError(t, err)
	quads, err := ir.New().Gen(prog)
	require.NoError(t, err)
	return quads
}

func opsOf(quads []ir.Quadruple) []string {
	ops := make([]string, len(quads))
	for i, q := range quads {
		ops[i] = q.Op
	}
	return ops
}

func TestGenS1IdentityFunction(t *testing.T) {
	quads := genQuads(t, `fn main() -> i32 { let x: i32 = 1; return x; }`)
	require.Len(t, quads, 4)
	assert.Equal(t, ir.Quadruple{Op: ir.OpFunc, Arg1: "main"}, quads[0])
	assert.Equal(t, ir.Quadruple{Op: ir.OpLet, Arg1: "x", Arg2: "1"}, quads[1])
	assert.Equal(t, ir.Quadruple{Op: ir.OpRet, Arg1: "x"}, quads[2])
	assert.Equal(t, ir.Quadruple{Op: ir.OpEndFunc, Arg1: "main"}, quads[3])
}

func TestGenAutoInsertsTrailingReturn(t *testing.T) {
	quads := genQuads(t, `fn main() { let x: i32 = 1; }`)
	last := quads[len(quads)-1]
	assert.Equal(t, ir.OpEndFunc, last.Op)
	assert.Equal(t, ir.OpRet, quads[len(quads)-2].Op)
}

func TestGenLoopExprBreakValueUsesNamedSlot(t *testing.T) {
	quads := genQuads(t, `fn main() -> i32 { let y: i32 = loop { break 7; }; return y; }`)

	var sawSlotDecl, sawSlotAssign bool
	for _, q := range quads {
		if q.Op == ir.OpLet && q.Arg1 == "break_result_main" {
			sawSlotDecl = true
		}
		if q.Op == ir.OpAssign && q.Arg1 == "break_result_main" && q.Arg2 == "7" {
			sawSlotAssign = true
		}
	}
	assert.True(t, sawSlotDecl, "expected break_result_main to be declared")
	assert.True(t, sawSlotAssign, "expected break value 7 assigned into break_result_main")
}

func TestGenBreakGotoTargetsLoopEndLabel(t *testing.T) {
	quads := genQuads(t, `fn main() { loop { break; } }`)

	labels := map[string]bool{}
	var gotoTargets []string
	for _, q := range quads {
		if q.Op == ir.OpLabel {
			labels[q.Arg1] = true
		}
		if q.Op == ir.OpGoto {
			gotoTargets = append(gotoTargets, q.Arg1)
		}
	}
	for _, target := range gotoTargets {
		assert.True(t, labels[target], "goto target %q must be a defined label", target)
	}
}

func TestGenWhileLoopShape(t *testing.T) {
	quads := genQuads(t, `fn main() { let mut x: i32 = 0; while x < 10 { x = x + 1; } }`)
	ops := opsOf(quads)
	assert.Contains(t, ops, ir.OpIfNZ)
	assert.Contains(t, ops, ir.OpGoto)

	labels := map[string]int{}
	for _, q := range quads {
		if q.Op == ir.OpLabel {
			labels[q.Arg1]++
		}
	}
	for label, count := range labels {
		assert.Equal(t, 1, count, "label %q must be unique", label)
	}
}

func TestGenForRangeLowersToComparisonLoop(t *testing.T) {
	quads := genQuads(t, `fn main() { for i in 0..10 { } }`)
	ops := opsOf(quads)
	assert.Contains(t, ops, ir.OpLt)
	assert.Contains(t, ops, ir.OpIfNZ)
	assert.Contains(t, ops, ir.OpAdd)
}

func TestGenIfExprBothArmsAssignSameResultTemp(t *testing.T) {
	quads := genQuads(t, `fn main() -> i32 { let y: i32 = if 1 { 2 } else { 3 }; return y; }`)

	var assignTargets []string
	for _, q := range quads {
		if q.Op == ir.OpAssign && q.Arg1 != "" && strings.HasPrefix(q.Arg1, "t") {
			assignTargets = append(assignTargets, q.Arg1)
		}
	}
	require.Len(t, assignTargets, 2)
	assert.Equal(t, assignTargets[0], assignTargets[1])
}

func TestGenIfZStoresBranchTargetInRes(t *testing.T) {
	quads := genQuads(t, `fn main() { if 1 { } else { } }`)
	found := false
	for _, q := range quads {
		if q.Op == ir.OpIfZ {
			found = true
			assert.Empty(t, q.Arg2, "IFZ must leave Arg2 empty")
			assert.NotEmpty(t, q.Res, "IFZ must carry its branch target in Res")
		}
	}
	assert.True(t, found, "expected at least one IFZ quad")
}

func TestGenLabelUniqueness(t *testing.T) {
	quads := genQuads(t, `
		fn main() {
			let mut x: i32 = 0;
			while x < 5 { x = x + 1; }
			if x == 5 { x = 0; } else { x = 1; }
			for i in 0..3 { }
			loop { break; }
		}
	`)
	seen := map[string]bool{}
	for _, q := range quads {
		if q.Op != ir.OpLabel {
			continue
		}
		require.False(t, seen[q.Arg1], "label %q reused", q.Arg1)
		seen[q.Arg1] = true
	}
}

func TestGenBranchesOnlyJumpToDefinedLabels(t *testing.T) {
	quads := genQuads(t, `
		fn main() {
			let mut x: i32 = 0;
			while x < 5 {
				if x == 2 { continue; }
				x = x + 1;
			}
		}
	`)
	labels := map[string]bool{}
	for _, q := range quads {
		if q.Op == ir.OpLabel {
			labels[q.Arg1] = true
		}
	}
	for _, q := range quads {
		switch q.Op {
		case ir.OpGoto:
			assert.True(t, labels[q.Arg1], "GOTO target %q undefined", q.Arg1)
		case ir.OpIfZ, ir.OpIfNZ:
			assert.True(t, labels[q.Res], "%s target %q undefined", q.Op, q.Res)
		}
	}
}

func TestGenDeterministicAcrossRuns(t *testing.T) {
	src := `fn main() -> i32 { let mut x: i32 = 0; while x < 3 { x = x + 1; } return x; }`
	a := genQuads(t, src)
	b := genQuads(t, src)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("quadruples differ between runs (-first +second):\n%s", diff)
	}
}

func TestGenBreakOutsideLoopIsGenError(t *testing.T) {
	prog := ast.NewProgram([]*ast.Function{
		ast.NewFunction("main", nil, nil, ast.NewBlock([]ast.Stmt{
			ast.NewBreak(nil, 0),
		}, 0), 0),
	}, 0)

	_, err := ir.New().Gen(prog)
	require.Error(t, err)
	var genErr *ir.GenError
	require.ErrorAs(t, err, &genErr)
}

func TestGenTupleAndArrayAggregates(t *testing.T) {
	quads := genQuads(t, `fn main() { let a: [i32; 3] = [1, 2, 3]; let t: (i32, i32) = (1, 2); }`)
	ops := opsOf(quads)
	assert.Contains(t, ops, ir.OpArray)
	assert.Contains(t, ops, ir.OpTuple)
}

func TestGenReferenceAndDeref(t *testing.T) {
	quads := genQuads(t, `fn main() { let x: i32 = 1; let r = &x; let y: i32 = *r; }`)
	ops := opsOf(quads)
	assert.Contains(t, ops, ir.OpAddr)
	assert.Contains(t, ops, ir.OpLoad)
}

func TestGenCallEmitsArgsInOrderThenCall(t *testing.T) {
	quads := genQuads(t, `fn f(a: i32) -> i32 { return a; } fn main() -> i32 { return f(5); }`)
	var argIdx, callIdx int
	for i, q := range quads {
		if q.Op == ir.OpArg {
			argIdx = i
		}
		if q.Op == ir.OpCall {
			callIdx = i
		}
	}
	assert.Less(t, argIdx, callIdx)
}
