package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malphas-lang/rustlite/internal/diag"
	"github.com/malphas-lang/rustlite/internal/driver"
)

var checkEval string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run the pipeline on a source file and print ok or the first diagnostic, without printing IR",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkEval, "eval", "e", "", "check inline source instead of reading from a file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	src, filename, err := readInput(args, checkEval)
	if err != nil {
		return err
	}

	res := driver.Run(filename, src)
	if res.Err == nil {
		fmt.Println("ok")
		return nil
	}

	if res.Diag != nil {
		formatter := diag.NewFormatter()
		formatter.LoadSource(filename, src)
		formatter.Format(*res.Diag)
	}
	return fmt.Errorf("%s failed: %w", res.Stage, res.Err)
}
