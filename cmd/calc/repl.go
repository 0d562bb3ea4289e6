package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/calculator/pkg/accumulator"
	"github.com/lemonberrylabs/calculator/pkg/expr"
)

const (
	exprPrompt   = "calc> "
	keypadPrompt = "keys> "
)

// lineReader is the subset of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
}

func newREPLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive calculator",
		Long: `Reads one expression per line and prints its result.

With --keypad each line is a sequence of key presses instead: digits, '.',
+ - * /, '=' or Enter to evaluate, 'c' to clear, 'e' to clear the entry and
'<' to delete the last character. The display is printed after every line.

Type q or press Ctrl-D to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keypad, _ := cmd.Flags().GetBool("keypad")
			prompt := exprPrompt
			if keypad {
				prompt = keypadPrompt
			}
			rl, err := readline.New(prompt)
			if err != nil {
				return err
			}
			defer func() { _ = rl.Close() }()
			return runREPL(rl, cmd.OutOrStdout(), keypad)
		},
	}
	cmd.Flags().Bool("keypad", false, "Treat input as calculator key presses")
	return cmd
}

func runREPL(r lineReader, w io.Writer, keypad bool) error {
	acc := accumulator.New()
	for {
		line, err := r.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "q" || line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}

		if !keypad {
			fmt.Fprintln(w, expr.Calculate(line))
			continue
		}
		if err := pressLine(acc, line); err != nil {
			fmt.Fprintln(w, err)
		}
		d := acc.Display()
		if d.Pending != "" {
			fmt.Fprintf(w, "%s\n%s\n", d.Pending, d.Entry)
		} else {
			fmt.Fprintln(w, d.Entry)
		}
	}
}

// pressLine presses one key per character. Spaces are ignored.
func pressLine(acc *accumulator.Accumulator, line string) error {
	for _, r := range line {
		var cmd string
		switch r {
		case ' ', '\t':
			continue
		case 'c', 'C':
			cmd = accumulator.CmdClear
		case 'e', 'E':
			cmd = accumulator.CmdClearEntry
		case '<':
			cmd = accumulator.CmdBackspace
		default:
			c, ok := accumulator.KeyCommand(string(r))
			if !ok {
				return fmt.Errorf("unbound key %q", r)
			}
			cmd = c
		}
		if err := acc.Press(cmd); err != nil {
			return err
		}
	}
	return nil
}
