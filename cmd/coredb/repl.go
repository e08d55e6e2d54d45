package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"coredb/storage"
)

var replDir string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Open a database directory and start an interactive line REPL",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := storage.Open(replDir)
		if err != nil {
			return fmt.Errorf("repl: %w", err)
		}
		defer eng.Close()
		return runRepl(eng, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	replCmd.Flags().StringVar(&replDir, "dir", "./data", "database directory to open")
	rootCmd.AddCommand(replCmd)
}

func runRepl(eng *storage.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "coredb> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(out, "coredb> ")
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		q, err := parseLine(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			fmt.Fprint(out, "coredb> ")
			continue
		}

		rows, err := eng.Execute(q)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			fmt.Fprint(out, "coredb> ")
			continue
		}
		printRows(out, rows)
		fmt.Fprint(out, "coredb> ")
	}
	return scanner.Err()
}

func printRows(out io.Writer, rows []storage.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "OK")
		return
	}
	for _, row := range rows {
		cols := make([]string, 0, len(row))
		for col := range row {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = fmt.Sprintf("%s=%s", col, row[col].String())
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
	}
}
