package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capfund/oxylang/internal/codegen"
	"github.com/capfund/oxylang/internal/preprocessor"
	"github.com/capfund/oxylang/internal/semantic"
)

var (
	compileInput  string
	compileOutput string
	compileArch   string
	keepAsm       bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "compile an Oxylang source file",
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileInput, "file", "f", "", "source file to compile (required)")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "a.out", "output path")
	compileCmd.Flags().StringVar(&compileArch, "arch", "x86_64", "target architecture")
	compileCmd.Flags().BoolVar(&keepAsm, "keep-asm", false, "keep the intermediate .asm file")
	_ = compileCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(_ *cobra.Command, _ []string) error {
	if compileArch != "x86_64" {
		return fmt.Errorf("unsupported architecture %q: oxyc only targets x86_64", compileArch)
	}

	asm, err := compileToAssembly(compileInput)
	if err != nil {
		return err
	}

	switch filepath.Ext(compileOutput) {
	case ".asm", ".s":
		return os.WriteFile(compileOutput, []byte(asm), 0o644)
	case ".o":
		return assembleOnly(asm, compileOutput)
	default:
		return assembleAndLink(asm, compileOutput)
	}
}

// compileToAssembly runs the full pipeline -- preprocess, analyze,
// generate -- on path, returning the resulting assembly text.
func compileToAssembly(path string) (string, error) {
	logStage("preprocessing %s", path)
	pp := preprocessor.New(".")
	program, err := pp.ProcessFile(path)
	if err != nil {
		return "", err
	}

	logStage("running semantic analysis")
	if err := semantic.Analyze(program); err != nil {
		return "", err
	}

	logStage("generating assembly")
	asm, err := codegen.Generate(program)
	if err != nil {
		return "", err
	}

	return asm, nil
}

func assembleOnly(asm, output string) error {
	asmPath := output + ".asm"
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		return err
	}
	if !keepAsm {
		defer os.Remove(asmPath)
	}

	logStage("assembling with nasm")
	nasm := exec.Command("nasm", "-felf64", asmPath, "-o", output)
	nasm.Stdout, nasm.Stderr = os.Stdout, os.Stderr
	return nasm.Run()
}

func assembleAndLink(asm, output string) error {
	objPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".o"
	if err := assembleOnly(asm, objPath); err != nil {
		return err
	}
	if !keepAsm {
		defer os.Remove(objPath)
	}

	logStage("linking with gcc")
	gcc := exec.Command("gcc", objPath, "-no-pie", "-o", output)
	gcc.Stdout, gcc.Stderr = os.Stdout, os.Stderr
	return gcc.Run()
}
