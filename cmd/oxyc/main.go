// Command oxyc is the Oxylang compiler's command-line entry point.
package main

import "github.com/capfund/oxylang/cmd/oxyc/cmd"

func main() {
	cmd.Execute()
}
