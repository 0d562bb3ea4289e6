// Package main is the entry point for the calc command.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "calc",
	Short:         "Arithmetic expression calculator",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("calc version {{.Version}}\n")

	rootCmd.AddCommand(newServeCmd(), newEvalCmd(), newPostfixCmd(), newREPLCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
