package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func engineTempDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(os.TempDir(), "coredb-engine-test-"+t.Name())
	os.RemoveAll(dir)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// create, insert, select.
func TestScenarioCreateInsertSelect(t *testing.T) {
	dir := engineTempDir(t)
	eng, err := Create(dir, "scenario-a")
	require.NoError(t, err)
	defer eng.Close()

	rows, err := eng.Execute(Create{Table: "t", Columns: []Column{
		{Name: "id", DataType: TypeInt},
		{Name: "price", DataType: TypeFloat},
	}})
	require.NoError(t, err)
	require.Empty(t, rows)

	rows, err = eng.Execute(Insert{Table: "t", Values: map[string]TypedValue{
		"id": IntValue(1), "price": FloatValue(1.23),
	}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0]["id"].Equal(IntValue(1)))
	require.True(t, rows[0]["price"].Equal(FloatValue(1.23)))

	rows, err = eng.Execute(Select{Table: "t"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0]["price"].Equal(FloatValue(1.23)))
}

// projection drops unlisted columns.
func TestScenarioProjection(t *testing.T) {
	dir := engineTempDir(t)
	eng, err := Create(dir, "scenario-b")
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Execute(Create{Table: "t", Columns: []Column{
		{Name: "id", DataType: TypeInt},
		{Name: "price", DataType: TypeFloat},
	}})
	require.NoError(t, err)
	_, err = eng.Execute(Insert{Table: "t", Values: map[string]TypedValue{
		"id": IntValue(1), "price": FloatValue(1.23),
	}})
	require.NoError(t, err)

	rows, err := eng.Execute(Select{Table: "t", Columns: []string{"price"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 1)
	require.True(t, rows[0]["price"].Equal(FloatValue(1.23)))
}

// filter matches with coercion (String -> Int).
func TestScenarioFilterWithCoercion(t *testing.T) {
	dir := engineTempDir(t)
	eng, err := Create(dir, "scenario-c")
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Execute(Create{Table: "t", Columns: []Column{
		{Name: "id", DataType: TypeInt},
		{Name: "price", DataType: TypeFloat},
	}})
	require.NoError(t, err)
	_, err = eng.Execute(Insert{Table: "t", Values: map[string]TypedValue{
		"id": IntValue(1), "price": FloatValue(1.23),
	}})
	require.NoError(t, err)

	rows, err := eng.Execute(Select{Table: "t", Where: map[string]TypedValue{
		"id": StringValue("1"),
	}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0]["id"].Equal(IntValue(1)))
}

// update then select.
func TestScenarioUpdateThenSelect(t *testing.T) {
	dir := engineTempDir(t)
	eng, err := Create(dir, "scenario-d")
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Execute(Create{Table: "t", Columns: []Column{
		{Name: "id", DataType: TypeInt},
		{Name: "price", DataType: TypeFloat},
	}})
	require.NoError(t, err)
	_, err = eng.Execute(Insert{Table: "t", Values: map[string]TypedValue{
		"id": IntValue(1), "price": FloatValue(1.23),
	}})
	require.NoError(t, err)

	updated, err := eng.Execute(Update{
		Table: "t",
		Set:   map[string]TypedValue{"price": FloatValue(9.0)},
		Where: map[string]TypedValue{"id": IntValue(1)},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.True(t, updated[0]["price"].Equal(FloatValue(9.0)))

	rows, err := eng.Execute(Select{Table: "t"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0]["price"].Equal(FloatValue(9.0)))
}

// delete is durable across reopens.
func TestScenarioDeleteDurableAcrossReopen(t *testing.T) {
	dir := engineTempDir(t)
	eng, err := Create(dir, "scenario-e")
	require.NoError(t, err)

	_, err = eng.Execute(Create{Table: "t", Columns: []Column{
		{Name: "id", DataType: TypeInt},
		{Name: "price", DataType: TypeFloat},
	}})
	require.NoError(t, err)
	_, err = eng.Execute(Insert{Table: "t", Values: map[string]TypedValue{
		"id": IntValue(1), "price": FloatValue(1.23),
	}})
	require.NoError(t, err)

	_, err = eng.Execute(Delete{Table: "t", Where: map[string]TypedValue{"id": IntValue(1)}})
	require.NoError(t, err)

	require.NoError(t, eng.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.Execute(Select{Table: "t"})
	require.NoError(t, err)
	require.Empty(t, rows)
}

// alter rename preserves data.
func TestScenarioAlterRenamePreservesData(t *testing.T) {
	dir := engineTempDir(t)
	eng, err := Create(dir, "scenario-f")
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Execute(Create{Table: "t", Columns: []Column{
		{Name: "id", DataType: TypeInt},
		{Name: "name", DataType: TypeString},
	}})
	require.NoError(t, err)
	_, err = eng.Execute(Insert{Table: "t", Values: map[string]TypedValue{
		"id": IntValue(1), "name": StringValue("a"),
	}})
	require.NoError(t, err)

	_, err = eng.Execute(Alter{Table: "t", Rename: map[string]string{"name": "label"}})
	require.NoError(t, err)

	rows, err := eng.Execute(Select{Table: "t"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0]["id"].Equal(IntValue(1)))
	require.True(t, rows[0]["label"].Equal(StringValue("a")))
	_, hasOldName := rows[0]["name"]
	require.False(t, hasOldName)
}

func TestDropEvictsCacheAndCatalogEntry(t *testing.T) {
	dir := engineTempDir(t)
	eng, err := Create(dir, "drop-test")
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Execute(Create{Table: "t", Columns: []Column{{Name: "id", DataType: TypeInt}}})
	require.NoError(t, err)
	_, err = eng.Execute(Insert{Table: "t", Values: map[string]TypedValue{"id": IntValue(1)}})
	require.NoError(t, err)

	_, err = eng.Execute(Drop{Table: "t"})
	require.NoError(t, err)

	_, ok := eng.catalog.getTable("t")
	require.False(t, ok)

	_, err = eng.Execute(Select{Table: "t"})
	require.Error(t, err)
	require.IsType(t, &TableNotFoundError{}, err)
}

func TestCreateRequiresDirectoryNotExist(t *testing.T) {
	dir := engineTempDir(t)
	require.NoError(t, os.MkdirAll(dir, 0755))

	_, err := Create(dir, "already-there")
	require.Error(t, err)
}
