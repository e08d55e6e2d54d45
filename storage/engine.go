package storage

import (
	"log"
	"os"
	"sync"
)

// Engine is the single entry point onto a database directory: one
// catalog plus lazily-opened table files, guarded by one coarse lock
// covering the whole directory rather than one per table.
type Engine struct {
	dir     string
	mu      sync.Mutex
	catalog *catalog
	tables  map[string]*tableFile
}

// Open loads an existing database directory. The directory must already
// contain a .schema catalog file written by a prior Create. A missing or
// malformed catalog is fatal: Open refuses to hand back a usable Engine,
// returned as an error rather than a panic, which is the idiomatic Go
// rendition of the same "refuses to open" contract.
func Open(dir string) (*Engine, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, wrapIO(err)
	}
	if !info.IsDir() {
		return nil, wrapIO(&os.PathError{Op: "open", Path: dir, Err: os.ErrInvalid})
	}
	cat, err := loadCatalog(dir)
	if err != nil {
		return nil, err
	}
	log.Printf("storage: opened database %q in %s (%d tables)", cat.name, dir, len(cat.tables))
	return &Engine{dir: dir, catalog: cat, tables: make(map[string]*tableFile)}, nil
}

// Create initializes a brand-new, empty database directory named name.
// dir must not already exist.
func Create(dir, name string) (*Engine, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, wrapIO(err)
	}
	cat := newCatalog(name)
	if err := cat.dump(dir); err != nil {
		return nil, err
	}
	log.Printf("storage: created database %q in %s", name, dir)
	return &Engine{dir: dir, catalog: cat, tables: make(map[string]*tableFile)}, nil
}

// Close flushes the catalog and closes every open table file handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var first error
	for _, t := range e.tables {
		if err := t.close(); err != nil && first == nil {
			first = err
		}
	}
	if err := e.catalog.dump(e.dir); err != nil && first == nil {
		first = err
	}
	log.Printf("storage: closed database %q", e.catalog.name)
	return first
}

// table returns the (lazily opened) physical file for name: a table is
// only ever opened on first use, not eagerly at startup.
func (e *Engine) table(name string) (*tableFile, error) {
	if t, ok := e.tables[name]; ok {
		return t, nil
	}
	schema, ok := e.catalog.getTable(name)
	if !ok {
		return nil, &TableNotFoundError{Name: name}
	}
	t, err := openTableFile(e.dir, name, schema)
	if err != nil {
		return nil, err
	}
	e.tables[name] = t
	return t, nil
}

// Execute dispatches q onto the appropriate table operation. It is the
// sole entry point into the engine — there is no SQL parser and no
// other way to reach storage.
func (e *Engine) Execute(q Query) ([]Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch query := q.(type) {
	case Select:
		t, err := e.table(query.Table)
		if err != nil {
			return nil, err
		}
		return t.selectRows(query.Columns, query.Where)

	case Insert:
		t, err := e.table(query.Table)
		if err != nil {
			return nil, err
		}
		row, err := t.insert(query.Values)
		if err != nil {
			return nil, err
		}
		return []Row{row}, nil

	case Update:
		t, err := e.table(query.Table)
		if err != nil {
			return nil, err
		}
		return t.updateRows(query.Set, query.Where)

	case Delete:
		t, err := e.table(query.Table)
		if err != nil {
			return nil, err
		}
		return t.deleteRows(query.Where)

	case Create:
		if err := e.catalog.createTable(query.Table, query.Columns); err != nil {
			return nil, err
		}
		return nil, nil

	case Drop:
		t, err := e.table(query.Table)
		if err != nil {
			return nil, err
		}
		if err := t.drop(); err != nil {
			return nil, err
		}
		if err := t.close(); err != nil {
			return nil, err
		}
		delete(e.tables, query.Table)
		log.Printf("storage: dropped table %q", query.Table)
		return nil, e.catalog.dropTable(query.Table)

	case Alter:
		if err := e.catalog.alterTable(query.Table, query.Rename); err != nil {
			return nil, err
		}
		if t, ok := e.tables[query.Table]; ok {
			schema, _ := e.catalog.getTable(query.Table)
			t.setSchema(schema)
		}
		return nil, nil

	default:
		return nil, &InvalidDataTypeError{Name: "unknown query type"}
	}
}
