package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coredb/storage"
)

var (
	initDir  string
	initName string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new, empty database directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := storage.Create(initDir, initName)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		defer eng.Close()
		fmt.Printf("initialized %q in %s\n", initName, initDir)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initDir, "dir", "./data", "database directory to create")
	initCmd.Flags().StringVar(&initName, "name", "coredb", "display name for the new database")
	rootCmd.AddCommand(initCmd)
}
