package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "print the parsed AST for an Oxylang source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	program, err := parser.Parse(string(src))
	if err != nil {
		return err
	}

	dumpNode(os.Stdout, program, 0)
	return nil
}

func dumpNode(w *os.File, n *ast.Node, depth int) {
	if n == nil {
		fmt.Fprintf(w, "%s<nil>\n", strings.Repeat("  ", depth))
		return
	}
	fmt.Fprintf(w, "%s%s %v\n", strings.Repeat("  ", depth), n.Kind, n.Value)
	for _, c := range n.Children {
		dumpNode(w, c, depth+1)
	}
}
