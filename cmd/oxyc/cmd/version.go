package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the oxyc version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("oxyc", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
