package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malphas-lang/rustlite/internal/diag"
	"github.com/malphas-lang/rustlite/internal/driver"
)

var (
	irEval     string
	irOptimize bool
)

var irCmd = &cobra.Command{
	Use:   "ir [file]",
	Short: "Lower a source file to quadruple IR and print one instruction per line",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIR,
}

func init() {
	rootCmd.AddCommand(irCmd)
	irCmd.Flags().StringVarP(&irEval, "eval", "e", "", "lower inline source instead of reading from a file")
	irCmd.Flags().BoolVar(&irOptimize, "optimize", false, "run the unused-label cleanup pass over the generated IR")
}

func runIR(cmd *cobra.Command, args []string) error {
	src, filename, err := readInput(args, irEval)
	if err != nil {
		return err
	}

	var opts []driver.Option
	if irOptimize {
		opts = append(opts, driver.WithOptimize())
	}

	res := driver.Run(filename, src, opts...)
	if res.Err != nil {
		if res.Diag != nil {
			formatter := diag.NewFormatter()
			formatter.LoadSource(filename, src)
			formatter.Format(*res.Diag)
		}
		return fmt.Errorf("%s failed: %w", res.Stage, res.Err)
	}

	for _, q := range res.IR {
		fmt.Println(q.String())
	}
	return nil
}
