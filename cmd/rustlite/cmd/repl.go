package cmd

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/rustlite/internal/diag"
	"github.com/malphas-lang/rustlite/internal/driver"
)

var (
	replPrompt = "rustlite> "

	replCyan   = color.New(color.FgCyan)
	replRed    = color.New(color.FgRed)
	replYellow = color.New(color.FgYellow)
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session that lexes, parses, checks, and lowers each line",
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	replCyan.Println("rustlite repl - type a function and press enter, Ctrl+D to quit")

	rl, err := readline.New(replPrompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Println("goodbye")
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			fmt.Println("goodbye")
			return nil
		}
		rl.SaveHistory(line)

		evalLine(line)
	}
}

func evalLine(line string) {
	defer func() {
		if r := recover(); r != nil {
			replRed.Printf("panic: %v\n", r)
		}
	}()

	res := driver.Run("<repl>", line)
	if res.Err != nil {
		if res.Diag != nil {
			formatter := diag.NewFormatterTo(color.Output)
			formatter.LoadSource("<repl>", line)
			formatter.Format(*res.Diag)
		} else {
			replRed.Printf("%s error: %v\n", res.Stage, res.Err)
		}
		return
	}

	for _, q := range res.IR {
		replYellow.Println(q.String())
	}
}
