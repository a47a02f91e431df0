package sqlitedb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	db, err := OpenWritable(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)"))
	require.NoError(t, db.Exec("INSERT INTO items (id, name) VALUES (1, 'one'), (2, 'two')"))
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	db, err := Open(newFixtureDB(t))
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT name FROM items WHERE id = ?", 2)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	assert.Equal(t, "two", name)
	assert.False(t, rows.Next())
}

func TestQueryFailureCarriesSQL(t *testing.T) {
	db, err := Open(newFixtureDB(t))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Query("SELECT nope FROM missing_table")
	require.Error(t, err)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, qe.SQL, "missing_table")
}

func TestOpenIsReadOnly(t *testing.T) {
	db, err := Open(newFixtureDB(t))
	require.NoError(t, err)
	defer db.Close()

	err = db.Exec("INSERT INTO items (id, name) VALUES (3, 'three')")
	assert.Error(t, err)
}
