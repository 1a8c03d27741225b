// Package diag defines the shared diagnostic model used by every stage of
// the rustlite front-end (lexer, parser, checker, IR generator) so the
// driver can report a single, consistent error surface regardless of which
// stage produced it.
package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer   Stage = "lexer"
	StageParser  Stage = "parser"
	StageChecker Stage = "checker"
	StageIRGen   Stage = "irgen"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	CodeLexerIllegalCharacter Code = "LEXER_ILLEGAL_CHARACTER"

	CodeParserUnexpectedToken Code = "PARSER_UNEXPECTED_TOKEN"

	CodeCheckerUndeclared        Code = "CHECKER_UNDECLARED"
	CodeCheckerTypeMismatch      Code = "CHECKER_TYPE_MISMATCH"
	CodeCheckerNotMutable        Code = "CHECKER_NOT_MUTABLE"
	CodeCheckerUninitialized     Code = "CHECKER_UNINITIALIZED"
	CodeCheckerAliasConflict     Code = "CHECKER_ALIAS_CONFLICT"
	CodeCheckerIndexOutOfRange   Code = "CHECKER_INDEX_OUT_OF_RANGE"
	CodeCheckerBadLvalue         Code = "CHECKER_BAD_LVALUE"
	CodeCheckerControlFlowMisuse Code = "CHECKER_CONTROL_FLOW_MISUSE"
	CodeCheckerArityMismatch     Code = "CHECKER_ARITY_MISMATCH"
	CodeCheckerReturnMismatch    Code = "CHECKER_RETURN_MISMATCH"

	CodeIRGenUnboundJump Code = "IRGEN_UNBOUND_JUMP"
)

// Span represents a location in source code. Line/Column are 1-based;
// Start/End are 0-based byte offsets into the original source, half-open.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// IsValid reports whether the span carries real position information.
func (s Span) IsValid() bool {
	return s.Line > 0
}

func (s Span) String() string {
	name := s.Filename
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", name, s.Line, s.Column)
}

// Diagnostic is a single compiler message surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Notes    []string
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped directly by stage-level error types.
func (d Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Span, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}
