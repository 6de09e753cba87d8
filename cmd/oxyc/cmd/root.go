// Package cmd wires up oxyc's cobra command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "oxyc",
	Short: "oxyc compiles Oxylang programs to x86_64 assembly",
	Long: `oxyc is a single-pass, ahead-of-time compiler for Oxylang, a small
C-like language. It lowers a .oxy source file straight to NASM-syntax
x86_64 Linux assembly, optionally assembling and linking the result.`,
}

// Execute runs the root command, printing any error to stderr and
// exiting non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print each compilation stage as it runs")
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "oxyc: %s\n", err)
	os.Exit(1)
}

func logStage(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
