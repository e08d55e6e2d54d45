package main

import (
	"fmt"
	"strings"

	"coredb/storage"
)

// parseLine turns one REPL line into a storage.Query. The grammar is a
// deliberately tiny convenience notation, not SQL: it tokenizes on
// whitespace and commas and has no planner. Values are
// always parsed as storage.StringValue; the engine's own coercion at
// the boundary (coerceSet) converts them to each column's declared
// type, so the REPL never needs to know a table's schema up front.
func parseLine(line string) (storage.Query, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	verb, rest := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "select":
		return parseSelect(rest)
	case "insert":
		return parseInsert(rest)
	case "update":
		return parseUpdate(rest)
	case "delete":
		return parseDelete(rest)
	case "create":
		return parseCreate(rest)
	case "drop":
		return parseDrop(rest)
	case "alter":
		return parseAlter(rest)
	default:
		return nil, fmt.Errorf("unrecognized command %q", verb)
	}
}

func parseSelect(args []string) (storage.Query, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("select: missing table name")
	}
	q := storage.Select{Table: args[0]}
	rest := args[1:]
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		q.Columns = splitCSV(rest[0])
		rest = rest[1:]
	}
	if len(rest) > 0 {
		where, err := parsePairs(rest[0])
		if err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
		q.Where = where
	}
	return q, nil
}

func parseInsert(args []string) (storage.Query, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("insert: usage: insert <table> col=val,col=val,...")
	}
	values, err := parsePairs(args[1])
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	return storage.Insert{Table: args[0], Values: values}, nil
}

func parseUpdate(args []string) (storage.Query, error) {
	whereIdx := indexOf(args, "where")
	if whereIdx < 0 || whereIdx < 2 || whereIdx+1 >= len(args) {
		return nil, fmt.Errorf("update: usage: update <table> col=val,... where col=val,...")
	}
	set, err := parsePairs(args[1])
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	where, err := parsePairs(args[whereIdx+1])
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	return storage.Update{Table: args[0], Set: set, Where: where}, nil
}

func parseDelete(args []string) (storage.Query, error) {
	whereIdx := indexOf(args, "where")
	if whereIdx < 0 || whereIdx < 1 || whereIdx+1 >= len(args) {
		return nil, fmt.Errorf("delete: usage: delete <table> where col=val,...")
	}
	where, err := parsePairs(args[whereIdx+1])
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	return storage.Delete{Table: args[0], Where: where}, nil
}

func parseCreate(args []string) (storage.Query, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("create: usage: create <table> col:type,col:type,...")
	}
	var columns []storage.Column
	for _, field := range strings.Split(args[1], ",") {
		name, typeName, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("create: malformed column field %q", field)
		}
		dt, err := storage.ParseDataType(typeName)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		columns = append(columns, storage.Column{Name: name, DataType: dt})
	}
	return storage.Create{Table: args[0], Columns: columns}, nil
}

func parseDrop(args []string) (storage.Query, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("drop: usage: drop <table>")
	}
	return storage.Drop{Table: args[0]}, nil
}

func parseAlter(args []string) (storage.Query, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("alter: usage: alter <table> old>new,old>new,...")
	}
	rename := make(map[string]string)
	for _, field := range strings.Split(args[1], ",") {
		old, new_, ok := strings.Cut(field, ">")
		if !ok {
			return nil, fmt.Errorf("alter: malformed rename %q", field)
		}
		rename[old] = new_
	}
	return storage.Alter{Table: args[0], Rename: rename}, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parsePairs(s string) (map[string]storage.TypedValue, error) {
	out := make(map[string]storage.TypedValue)
	for _, pair := range strings.Split(s, ",") {
		col, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed col=val pair %q", pair)
		}
		out[col] = storage.StringValue(val)
	}
	return out, nil
}

func indexOf(fields []string, target string) int {
	for i, f := range fields {
		if strings.ToLower(f) == target {
			return i
		}
	}
	return -1
}
