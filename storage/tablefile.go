package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// tableFile is the append-only physical record store for one table: a
// leading tombstone byte followed by the cells in schema order, with no
// separate log — the table file *is* the data.
type tableFile struct {
	name   string
	schema TableSchema
	file   *os.File
}

const (
	tombstoneLive    byte = 0
	tombstoneDeleted byte = 1
)

// openTableFile opens (creating if necessary) the file backing table
// name inside dir: one file per table, named exactly as the table.
func openTableFile(dir, name string, schema TableSchema) (*tableFile, error) {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, wrapIO(err)
	}
	return &tableFile{name: name, schema: schema, file: f}, nil
}

// setSchema updates the schema used to decode rows, called by Engine
// after an Alter so cached handles and the catalog never disagree about
// column names.
func (t *tableFile) setSchema(schema TableSchema) {
	t.schema = schema
}

func (t *tableFile) close() error {
	return wrapIO(t.file.Close())
}

// drop truncates the file to zero length; the caller (Engine) is
// responsible for removing the catalog entry and evicting the cache.
func (t *tableFile) drop() error {
	if err := t.file.Truncate(0); err != nil {
		return wrapIO(err)
	}
	_, err := t.file.Seek(0, io.SeekStart)
	return wrapIO(err)
}

// coerceSet validates and coerces a caller-supplied {col -> value} map
// against the schema.
func (t *tableFile) coerceSet(values map[string]TypedValue) (map[string]TypedValue, error) {
	out := make(map[string]TypedValue, len(values))
	for col, v := range values {
		idx := t.schema.IndexOf(col)
		if idx < 0 {
			return nil, &ColumnNotFoundError{Column: col, Table: t.name}
		}
		cv, err := coerce(v, t.schema[idx].DataType)
		if err != nil {
			return nil, err
		}
		out[col] = cv
	}
	return out, nil
}

// physicalRow holds a decoded row along with the file offset it starts
// at, for use by update/delete which need to revisit that offset.
type physicalRow struct {
	offset int64
	row    Row
}

// nextRow decodes the next live row starting at the file's current
// position, advancing past any tombstoned rows it encounters along the
// way. Returns (nil, false, nil) at clean end-of-stream (a short read on
// the tombstone byte).
func (t *tableFile) nextRow() (*physicalRow, bool, error) {
	for {
		offset, err := t.file.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, false, wrapIO(err)
		}

		var tomb [1]byte
		if _, err := io.ReadFull(t.file, tomb[:]); err != nil {
			if err == io.EOF {
				return nil, false, nil
			}
			return nil, false, wrapIO(err)
		}

		row := make(Row, len(t.schema))
		for _, col := range t.schema {
			v, err := decode(col.DataType, t.file)
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return nil, false, nil
				}
				return nil, false, err
			}
			row[col.Name] = v
		}

		if tomb[0] == tombstoneDeleted {
			continue
		}
		return &physicalRow{offset: offset, row: row}, true, nil
	}
}

// rowByteLen returns the encoded byte length of one physical row under
// t.schema (tombstone byte + every cell).
func (t *tableFile) rowByteLen(row Row) int {
	n := 1
	for _, col := range t.schema {
		n += len(encode(row[col.Name]))
	}
	return n
}

// encodeRow builds the physical record for a live row in schema order.
func (t *tableFile) encodeRow(row Row) []byte {
	var buf bytes.Buffer
	buf.WriteByte(tombstoneLive)
	for _, col := range t.schema {
		buf.Write(encode(row[col.Name]))
	}
	return buf.Bytes()
}

// tombstoneAt flips the tombstone byte at offset to deleted.
func (t *tableFile) tombstoneAt(offset int64) error {
	if _, err := t.file.WriteAt([]byte{tombstoneDeleted}, offset); err != nil {
		return wrapIO(err)
	}
	return nil
}

// insert coerces values, requires every schema column to be present, and
// appends the encoded row at EOF.
func (t *tableFile) insert(values map[string]TypedValue) (Row, error) {
	coerced, err := t.coerceSet(values)
	if err != nil {
		return nil, err
	}

	row := make(Row, len(t.schema))
	for _, col := range t.schema {
		v, ok := coerced[col.Name]
		if !ok {
			return nil, &IncompleteDataError{Column: col.Name, Table: t.name}
		}
		row[col.Name] = v
	}

	if _, err := t.file.Seek(0, io.SeekEnd); err != nil {
		return nil, wrapIO(err)
	}
	if _, err := t.file.Write(t.encodeRow(row)); err != nil {
		return nil, wrapIO(err)
	}
	return row, nil
}

// selectRows scans the file for rows matching where, returning each
// surviving row restricted to projection.
func (t *tableFile) selectRows(projection []string, where map[string]TypedValue) ([]Row, error) {
	coercedWhere, err := t.coerceSet(where)
	if err != nil {
		return nil, err
	}
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return nil, wrapIO(err)
	}

	var out []Row
	for {
		pr, ok, err := t.nextRow()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		matched, err := pr.row.matches(t.name, coercedWhere)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		projected, err := pr.row.project(t.name, projection)
		if err != nil {
			return nil, err
		}
		out = append(out, projected)
	}
	return out, nil
}

// updateRows rewrites rows matching where by overlaying set and
// reinserting. It captures EOF before iterating so rows appended by this
// same call (the re-inserted new versions) are never revisited.
func (t *tableFile) updateRows(set map[string]TypedValue, where map[string]TypedValue) ([]Row, error) {
	coercedSet, err := t.coerceSet(set)
	if err != nil {
		return nil, err
	}
	coercedWhere, err := t.coerceSet(where)
	if err != nil {
		return nil, err
	}

	eof, err := t.file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, wrapIO(err)
	}
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return nil, wrapIO(err)
	}

	var updated []Row
	for {
		pr, ok, err := t.nextRow()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if pr.offset == eof {
			break
		}

		matched, err := pr.row.matches(t.name, coercedWhere)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}

		newRow := pr.row.Clone()
		changed := false
		for col, v := range coercedSet {
			if _, ok := newRow[col]; !ok {
				return nil, &ColumnNotFoundError{Column: col, Table: t.name}
			}
			if !newRow[col].Equal(v) {
				changed = true
			}
			newRow[col] = v
		}
		if !changed {
			continue
		}

		savedPos, err := t.file.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, wrapIO(err)
		}
		if _, err := t.insert(toValueMap(newRow)); err != nil {
			return nil, err
		}
		if err := t.tombstoneAt(pr.offset); err != nil {
			return nil, err
		}
		if _, err := t.file.Seek(savedPos, io.SeekStart); err != nil {
			return nil, wrapIO(err)
		}

		updated = append(updated, newRow)
	}
	return updated, nil
}

// deleteRows tombstones every row matching where, returning the rows it
// deleted in file order.
func (t *tableFile) deleteRows(where map[string]TypedValue) ([]Row, error) {
	coercedWhere, err := t.coerceSet(where)
	if err != nil {
		return nil, err
	}
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return nil, wrapIO(err)
	}

	var deleted []Row
	for {
		pr, ok, err := t.nextRow()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		matched, err := pr.row.matches(t.name, coercedWhere)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}

		savedPos, err := t.file.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, wrapIO(err)
		}
		if err := t.tombstoneAt(pr.offset); err != nil {
			return nil, err
		}
		if _, err := t.file.Seek(savedPos, io.SeekStart); err != nil {
			return nil, wrapIO(err)
		}

		deleted = append(deleted, pr.row)
	}
	return deleted, nil
}

func toValueMap(row Row) map[string]TypedValue {
	out := make(map[string]TypedValue, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
