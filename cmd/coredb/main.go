// Command coredb is the ambient terminal entry point onto the storage
// engine: a cobra command tree offering directory lifecycle and a tiny
// REPL.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coredb",
	Short: "A small file-backed relational storage engine",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
