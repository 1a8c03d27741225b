package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malphas-lang/rustlite/internal/diag"
	"github.com/malphas-lang/rustlite/internal/lexer"
)

var (
	lexEval     string
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file and print the resulting tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token line:column positions")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "print only the illegal-character errors")
}

func runLex(cmd *cobra.Command, args []string) error {
	src, filename, err := readInput(args, lexEval)
	if err != nil {
		return err
	}

	l := lexer.New(src)
	l.SetFilename(filename)
	tokens := l.Drain()

	if !lexOnlyErrs {
		for _, tok := range tokens {
			if lexShowPos {
				fmt.Printf("%-10s %-8q @%d:%d\n", tok.Type, tok.Value, tok.Line, tok.Column)
			} else {
				fmt.Printf("%-10s %q\n", tok.Type, tok.Value)
			}
		}
	}

	if len(l.Errors) == 0 {
		return nil
	}

	formatter := diag.NewFormatter()
	formatter.LoadSource(filename, src)
	for _, lexErr := range l.Errors {
		formatter.Format(lexErr.ToDiagnostic(filename))
	}
	return fmt.Errorf("found %d illegal character(s)", len(l.Errors))
}
