package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const catalogFileName = ".schema"

// catalog is the in-memory schema description: a mapping from table name
// to its ordered column list, plus a database-wide display name. It is
// persisted as a flat, line-oriented .schema file and round-tripped
// through loadCatalog/dump on every open and close.
type catalog struct {
	name   string
	tables map[string]TableSchema
}

func newCatalog(name string) *catalog {
	return &catalog{name: name, tables: make(map[string]TableSchema)}
}

// validateName reports whether s is non-empty and every character is
// alphanumeric or '_'.
func validateName(s string) error {
	if s == "" {
		return &InvalidNameError{Name: s}
	}
	for _, r := range s {
		if !isNameRune(r) {
			return &InvalidNameError{Name: s}
		}
	}
	return nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	default:
		return false
	}
}

// createTable validates, sorts, and inserts a new table schema. Columns
// are stable-sorted by name so on-disk row order stays deterministic
// across opens.
func (c *catalog) createTable(name string, columns []Column) error {
	if err := validateName(name); err != nil {
		return err
	}
	if len(columns) == 0 {
		return &NoColumnsError{}
	}
	if _, exists := c.tables[name]; exists {
		return &TableAlreadyExistsError{Name: name}
	}

	sorted := make(TableSchema, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, col := range sorted {
		if err := validateName(col.Name); err != nil {
			return err
		}
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return &ColumnAlreadyExistsError{Column: sorted[i].Name, Table: name}
		}
	}

	c.tables[name] = sorted
	return nil
}

func (c *catalog) dropTable(name string) error {
	if _, exists := c.tables[name]; !exists {
		return &TableNotFoundError{Name: name}
	}
	delete(c.tables, name)
	return nil
}

func (c *catalog) getTable(name string) (TableSchema, bool) {
	s, ok := c.tables[name]
	return s, ok
}

// alterTable renames columns per rename (old -> new), all-or-nothing: on
// any error the schema is left completely unchanged.
func (c *catalog) alterTable(name string, rename map[string]string) error {
	schema, exists := c.tables[name]
	if !exists {
		return &TableNotFoundError{Name: name}
	}

	next := schema.Clone()
	matched := make(map[string]bool, len(rename))
	for i, col := range next {
		newName, ok := rename[col.Name]
		if !ok {
			continue
		}
		if err := validateName(newName); err != nil {
			return err
		}
		next[i].Name = newName
		matched[col.Name] = true
	}

	for old := range rename {
		if !matched[old] {
			return &ColumnNotFoundError{Column: old, Table: name}
		}
	}

	seen := make(map[string]bool, len(next))
	for _, col := range next {
		if seen[col.Name] {
			return &ColumnAlreadyExistsError{Column: col.Name, Table: name}
		}
		seen[col.Name] = true
	}

	c.tables[name] = next
	return nil
}

// -------------------------------------------------------------------------
// Persistence — a line-oriented .schema file.
// -------------------------------------------------------------------------

func loadCatalog(dir string) (*catalog, error) {
	f, err := os.Open(filepath.Join(dir, catalogFileName))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("malformed catalog: empty .schema file")
	}
	name := scanner.Text()

	c := newCatalog(name)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		table, colsPart, ok := strings.Cut(line, "#")
		if !ok {
			return nil, fmt.Errorf("malformed catalog line %q", line)
		}
		var cols TableSchema
		for _, field := range strings.Split(colsPart, ",") {
			colName, typeName, ok := strings.Cut(field, ":")
			if !ok {
				return nil, fmt.Errorf("malformed column field %q in table %q", field, table)
			}
			dt, err := ParseDataType(typeName)
			if err != nil {
				return nil, fmt.Errorf("malformed catalog: %w", err)
			}
			cols = append(cols, Column{Name: colName, DataType: dt})
		}
		c.tables[table] = cols
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return c, nil
}

func (c *catalog) dump(dir string) error {
	f, err := os.Create(filepath.Join(dir, catalogFileName))
	if err != nil {
		return wrapIO(err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, c.name)

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cols := c.tables[name]
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = fmt.Sprintf("%s:%s", col.Name, col.DataType)
		}
		fmt.Fprintf(w, "%s#%s\n", name, strings.Join(parts, ","))
	}
	return wrapIO(w.Flush())
}
