package cmd

import (
	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rustlite",
	Short: "Front-end for a small Rust-like statically-typed imperative language",
	Long: `rustlite lexes, parses, type-checks, and lowers a small Rust-like
language to a flat quadruple IR.

It stops at IR generation: turning the IR into machine code is left to an
external assembler that consumes the quadruple stream this tool prints.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
