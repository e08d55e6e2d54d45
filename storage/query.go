package storage

// Query is the closed union of operations Engine.Execute accepts. There is
// no SQL parser in front of it: callers build one of the concrete types
// below directly.
type Query interface {
	isQuery()
}

// Select returns every row of Table matching Where, restricted to
// Columns (all columns if Columns is empty).
type Select struct {
	Table   string
	Columns []string
	Where   map[string]TypedValue
}

// Insert appends one row built from Values, which must supply every
// column in the table's schema.
type Insert struct {
	Table  string
	Values map[string]TypedValue
}

// Update rewrites every row matching Where, setting the columns named in
// Set to their paired values.
type Update struct {
	Table string
	Set   map[string]TypedValue
	Where map[string]TypedValue
}

// Delete tombstones every row matching Where.
type Delete struct {
	Table string
	Where map[string]TypedValue
}

// Create defines a new table with the given columns.
type Create struct {
	Table   string
	Columns []Column
}

// Drop removes a table from the catalog and truncates its backing file to
// zero length; the file itself is left in place.
type Drop struct {
	Table string
}

// Alter renames columns of Table per Rename (old name -> new name).
type Alter struct {
	Table  string
	Rename map[string]string
}

func (Select) isQuery() {}
func (Insert) isQuery() {}
func (Update) isQuery() {}
func (Delete) isQuery() {}
func (Create) isQuery() {}
func (Drop) isQuery()   {}
func (Alter) isQuery()  {}
