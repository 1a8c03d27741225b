// Package driver sequences the lexer, parser, checker, and IR generator
// into a single pipeline and normalizes whatever any stage produces into
// one Result, so every front end (CLI, repl, tests) shares one code path.
package driver

import (
	"github.com/malphas-lang/rustlite/internal/ast"
	"github.com/malphas-lang/rustlite/internal/diag"
	"github.com/malphas-lang/rustlite/internal/ir"
	"github.com/malphas-lang/rustlite/internal/ir/optimize"
	"github.com/malphas-lang/rustlite/internal/lexer"
	"github.com/malphas-lang/rustlite/internal/parser"
	"github.com/malphas-lang/rustlite/internal/types"
)

// Stage marks how far a Result made it before failing, if it failed.
type Stage string

const (
	StageLex    Stage = "lex"
	StageParse  Stage = "parse"
	StageCheck  Stage = "check"
	StageIRGen  Stage = "irgen"
	StageDone   Stage = "done"
)

// Result carries the output of every stage that ran, plus the error (if
// any) and the Diagnostic it converts to. Tokens is always populated, even
// on failure, so a caller can report "lexed N tokens before the parser
// gave up".
type Result struct {
	Filename string
	Tokens   []lexer.Token
	AST      *ast.Program
	IR       []ir.Quadruple
	Stage    Stage
	Err      error
	Diag     *diag.Diagnostic
}

// Option configures a Run.
type Option func(*options)

type options struct {
	optimize bool
}

// WithOptimize runs the IR optimization pipeline (currently just the
// unused-label pass) over the generated quadruples.
func WithOptimize() Option {
	return func(o *options) { o.optimize = true }
}

// Run lexes, parses, checks, and lowers src in order, stopping at the
// first stage that fails. Every returned Result carries whatever partial
// output the pipeline managed to produce.
func Run(filename, src string, opts ...Option) Result {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	res := Result{Filename: filename}

	lex := lexer.New(src)
	lex.SetFilename(filename)
	res.Tokens = lex.Drain()

	if len(lex.Errors) > 0 {
		d := lex.Errors[0].ToDiagnostic(filename)
		res.Stage = StageLex
		res.Err = lex.Errors[0]
		res.Diag = &d
		return res
	}

	reparse := lexer.New(src)
	reparse.SetFilename(filename)
	prog, err := parser.New(reparse).Parse()
	if err != nil {
		res.Stage = StageParse
		res.Err = err
		if pe, ok := err.(*parser.ParseError); ok {
			d := pe.ToDiagnostic(filename)
			res.Diag = &d
		}
		return res
	}
	res.AST = prog

	if err := types.New().Check(prog); err != nil {
		res.Stage = StageCheck
		res.Err = err
		if ce, ok := err.(*types.CheckError); ok {
			d := ce.ToDiagnostic(filename)
			res.Diag = &d
		}
		return res
	}

	quads, err := ir.New().Gen(prog)
	if err != nil {
		res.Stage = StageIRGen
		res.Err = err
		if ge, ok := err.(*ir.GenError); ok {
			d := ge.ToDiagnostic(filename)
			res.Diag = &d
		}
		return res
	}

	if cfg.optimize {
		quads = optimize.Run(quads)
	}
	res.IR = quads
	res.Stage = StageDone
	return res
}
