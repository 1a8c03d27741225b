package cmd

import (
	"fmt"
	"io"
	"os"
)

// readInput resolves the source text for a subcommand: an inline -e
// expression, a file argument, or stdin, in that priority order.
func readInput(args []string, inlineExpr string) (src, filename string, err error) {
	if inlineExpr != "" {
		return inlineExpr, "<eval>", nil
	}
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("error reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}
