package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/capfund/oxylang/internal/lexer"
	"github.com/capfund/oxylang/internal/token"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "print the token stream for an Oxylang source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(_ *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	l := lexer.New(string(src))
	for {
		tok, err := l.NextToken()
		if err != nil {
			return err
		}
		fmt.Printf("%4d  %-12s %q\n", tok.Line, tok.Type, tok.Literal)
		if tok.Type == token.EOF {
			return nil
		}
	}
}
