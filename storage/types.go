// Package storage implements the file-backed row store: the value codec,
// the append-only table file, the schema catalog, and the engine that
// dispatches a Query onto them.
package storage

import "fmt"

// DataType is the closed enumeration of scalar value kinds a column can
// hold. Its ordinal (0..3) is stable; the catalog file and error messages
// use the textual form from String, not the ordinal. Code should switch on
// the type itself, never on the ordinal.
type DataType uint8

const (
	TypeInt DataType = iota
	TypeFloat
	TypeChar
	TypeString
)

// String returns the lowercase textual form used in the catalog file and
// in error messages.
func (d DataType) String() string {
	switch d {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeChar:
		return "char"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// ParseDataType maps a textual type name back to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "char":
		return TypeChar, nil
	case "string":
		return TypeString, nil
	default:
		return 0, &InvalidDataTypeError{Name: s}
	}
}

// Column is a (name, type) pair. Names are validated against
// validateName before being accepted into a schema.
type Column struct {
	Name     string
	DataType DataType
}

// TableSchema is the ordered sequence of columns that defines the physical
// layout of a table's rows. Order is significant: it is the serialization
// order on disk. Columns are sorted by name when the table is created; a
// later rename keeps each column in its position, so the names need not
// stay sorted.
type TableSchema []Column

// IndexOf returns the position of name in the schema, or -1.
func (s TableSchema) IndexOf(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of the schema.
func (s TableSchema) Clone() TableSchema {
	out := make(TableSchema, len(s))
	copy(out, s)
	return out
}

// -------------------------------------------------------------------------
// Error taxonomy — one struct per kind. Structured fields instead of
// sentinel errors.New values, so callers can type-assert and recover
// the offending name instead of string-matching an error message.
// -------------------------------------------------------------------------

type TableAlreadyExistsError struct{ Name string }

func (e *TableAlreadyExistsError) Error() string {
	return fmt.Sprintf("table %q already exists", e.Name)
}

type TableNotFoundError struct{ Name string }

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found", e.Name)
}

type ColumnAlreadyExistsError struct{ Column, Table string }

func (e *ColumnAlreadyExistsError) Error() string {
	return fmt.Sprintf("column %q already exists in table %q", e.Column, e.Table)
}

type ColumnNotFoundError struct{ Column, Table string }

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in table %q", e.Column, e.Table)
}

type NoColumnsError struct{}

func (e *NoColumnsError) Error() string { return "table must have at least one column" }

type InvalidNameError struct{ Name string }

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: must be non-empty and match [A-Za-z0-9_]+", e.Name)
}

type InvalidValueError struct {
	Value  TypedValue
	Target DataType
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for type %s", e.Value, e.Target)
}

type IncompleteDataError struct{ Column, Table string }

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("missing column %q for table %q", e.Column, e.Table)
}

type InvalidDataTypeError struct{ Name string }

func (e *InvalidDataTypeError) Error() string {
	return fmt.Sprintf("invalid data type %q", e.Name)
}

type IoError struct{ Err error }

func (e *IoError) Error() string { return fmt.Sprintf("io error: %v", e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

func wrapIO(err error) error {
	if err == nil {
		return nil
	}
	return &IoError{Err: err}
}
