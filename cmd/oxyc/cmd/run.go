package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "compile and immediately execute an Oxylang source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	tmpDir, err := os.MkdirTemp("", "oxyc-run-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	binary := filepath.Join(tmpDir, "program")

	asm, err := compileToAssembly(args[0])
	if err != nil {
		return err
	}
	if err := assembleAndLink(asm, binary); err != nil {
		return err
	}

	program := exec.Command(binary)
	program.Stdin, program.Stdout, program.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := program.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.RemoveAll(tmpDir)
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("running %s: %w", binary, err)
	}
	return nil
}
