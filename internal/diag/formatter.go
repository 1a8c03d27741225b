package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders diagnostics in a Rust-style format: a colored header
// line, a source snippet with the offending column underlined, and any
// trailing notes.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string
	color       bool
}

// NewFormatter creates a Formatter that writes to stderr with color enabled;
// the color package still suppresses escape codes when its own terminal
// check (made on stdout) fails.
func NewFormatter() *Formatter {
	return &Formatter{
		out:         os.Stderr,
		sourceCache: make(map[string]string),
		color:       true,
	}
}

// NewFormatterTo creates a Formatter writing to an arbitrary writer, with
// color disabled (useful for deterministic test/snapshot output).
func NewFormatterTo(w io.Writer) *Formatter {
	return &Formatter{
		out:         w,
		sourceCache: make(map[string]string),
		color:       false,
	}
}

// LoadSource registers source text for a filename so later diagnostics
// against that filename can render a snippet. Passing an empty filename
// with the original input is how callers without real files opt in.
func (f *Formatter) LoadSource(filename, src string) {
	f.sourceCache[filename] = src
}

func (f *Formatter) severityColor(sev Severity) *color.Color {
	switch sev {
	case SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	case SeverityNote:
		return color.New(color.FgCyan, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// Format writes a single diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	sevColor := f.severityColor(d.Severity)
	header := fmt.Sprintf("%s", d.Severity)
	if d.Code != "" {
		header = fmt.Sprintf("%s[%s]", d.Severity, d.Code)
	}
	if f.color {
		sevColor.Fprint(f.out, header)
	} else {
		fmt.Fprint(f.out, header)
	}
	fmt.Fprintf(f.out, ": %s\n", d.Message)

	if d.Span.IsValid() {
		fmt.Fprintf(f.out, "  --> %s\n", d.Span)
		f.printSnippet(d.Span)
	}

	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "  = note: %s\n", note)
	}
}

func (f *Formatter) printSnippet(span Span) {
	src, ok := f.sourceCache[span.Filename]
	if !ok {
		return
	}
	lines := strings.Split(src, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		return
	}
	line := lines[span.Line-1]
	gutter := fmt.Sprintf("%d", span.Line)
	fmt.Fprintf(f.out, "   %s |\n", strings.Repeat(" ", len(gutter)))
	fmt.Fprintf(f.out, " %s | %s\n", gutter, line)

	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	col := span.Column - 1
	if col < 0 {
		col = 0
	}
	underline := strings.Repeat(" ", col) + strings.Repeat("^", width)
	fmt.Fprintf(f.out, "   %s | %s\n", strings.Repeat(" ", len(gutter)), underline)
}
