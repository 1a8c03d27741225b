package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/malphas-lang/rustlite/internal/ir"
	"github.com/malphas-lang/rustlite/internal/ir/optimize"
)

func TestUnusedLabelsRemovesUnreferencedLabel(t *testing.T) {
	quads := []ir.Quadruple{
		{Op: ir.OpFunc, Arg1: "main"},
		{Op: ir.OpLabel, Arg1: "L0"},
		{Op: ir.OpLet, Arg1: "x", Arg2: "1"},
		{Op: ir.OpEndFunc, Arg1: "main"},
	}
	out := optimize.UnusedLabels(quads)
	for _, q := range out {
		assert.NotEqual(t, ir.OpLabel, q.Op)
	}
}

func TestUnusedLabelsKeepsGotoTarget(t *testing.T) {
	quads := []ir.Quadruple{
		{Op: ir.OpGoto, Arg1: "L0"},
		{Op: ir.OpLabel, Arg1: "L0"},
	}
	out := optimize.UnusedLabels(quads)
	assert.Len(t, out, 2)
}

func TestUnusedLabelsKeepsIfZResTarget(t *testing.T) {
	quads := []ir.Quadruple{
		{Op: ir.OpIfZ, Arg1: "cond", Res: "Lelse"},
		{Op: ir.OpLabel, Arg1: "Lelse"},
	}
	out := optimize.UnusedLabels(quads)
	assert.Len(t, out, 2)
}

func TestUnusedLabelsIgnoresArg2(t *testing.T) {
	quads := []ir.Quadruple{
		{Op: ir.OpIfNZ, Arg1: "cond", Arg2: "Lnotused", Res: "Lreal"},
		{Op: ir.OpLabel, Arg1: "Lnotused"},
		{Op: ir.OpLabel, Arg1: "Lreal"},
	}
	out := optimize.UnusedLabels(quads)
	assert.Len(t, out, 2)
	assert.Equal(t, "Lreal", out[1].Arg1)
}

func TestRunPipelineAppliesUnusedLabels(t *testing.T) {
	quads := []ir.Quadruple{
		{Op: ir.OpLabel, Arg1: "dead"},
		{Op: ir.OpRet},
	}
	out := optimize.Run(quads)
	assert.Len(t, out, 1)
}
