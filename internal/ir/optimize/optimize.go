// Package optimize runs a fixed pipeline of passes over a quadruple list
// after generation. Only UnusedLabels does real work today; DeadCode,
// ConstantFold, and CopyPropagation are documented extension points left
// for a later optimizer pass.
package optimize

import "github.com/malphas-lang/rustlite/internal/ir"

// Pass transforms a quadruple list into an equivalent, possibly smaller
// one.
type Pass func([]ir.Quadruple) []ir.Quadruple

// Pipeline is the ordered list of passes Run applies.
var Pipeline = []Pass{
	DeadCode,
	ConstantFold,
	CopyPropagation,
	UnusedLabels,
}

// Run applies every pass in Pipeline in order.
func Run(quads []ir.Quadruple) []ir.Quadruple {
	for _, pass := range Pipeline {
		quads = pass(quads)
	}
	return quads
}

// DeadCode would remove instructions after an unconditional jump whose
// target is never reached by a fallthrough. Not implemented: it returns
// its input unchanged, so unreachable quadruples the generator emits (for
// example the loop back-edge GOTO right after a break's GOTO) are kept.
func DeadCode(quads []ir.Quadruple) []ir.Quadruple {
	return quads
}

// ConstantFold would evaluate binary/unary ops over literal operands at
// generation time and replace the temp's later uses with the literal.
// Not implemented: needs a use-def walk this package doesn't build yet.
func ConstantFold(quads []ir.Quadruple) []ir.Quadruple {
	return quads
}

// CopyPropagation would replace `= a` followed by uses of its target with
// direct uses of a, removing the intermediate copy. Not implemented for
// the same reason as ConstantFold.
func CopyPropagation(quads []ir.Quadruple) []ir.Quadruple {
	return quads
}

// UnusedLabels removes any LABEL quadruple whose name is never referenced
// by a GOTO, IFZ, or IFNZ. IFZ/IFNZ carry their branch target in Res, not
// Arg2 — load-bearing detail confirmed against the label-liveness scan
// this was ported from.
func UnusedLabels(quads []ir.Quadruple) []ir.Quadruple {
	used := make(map[string]bool)
	for _, q := range quads {
		switch q.Op {
		case ir.OpGoto:
			used[q.Arg1] = true
		case ir.OpIfZ, ir.OpIfNZ:
			used[q.Res] = true
		}
	}

	out := make([]ir.Quadruple, 0, len(quads))
	for _, q := range quads {
		if q.Op == ir.OpLabel && !used[q.Arg1] {
			continue
		}
		out = append(out, q)
	}
	return out
}
