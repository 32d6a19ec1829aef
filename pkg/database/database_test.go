package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/garyjia/invoice-converter/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(context.Background(), Config{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql":  {Data: []byte("SELECT 2;")},
		"001_first.sql":   {Data: []byte("SELECT 1;")},
		"README.md":       {Data: []byte("ignored")},
		"010_tenth.sql":   {Data: []byte("SELECT 10;")},
		"nested/keep.txt": {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, 2, got[1].Version)
	assert.Equal(t, 10, got[2].Version)
}

func TestLoadMigrations_Invalid(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}})
	assert.Error(t, err)

	_, err = LoadMigrations(fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	})
	assert.ErrorContains(t, err, "duplicate migration version 1")
}

func TestMigrator_RunMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db, zap.NewNop())

	require.NoError(t, m.RunMigrations(ctx, migrations.FS))
	require.NoError(t, m.RunMigrations(ctx, migrations.FS))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	_, err := db.Exec(`INSERT INTO conversions (id, source_name, output_path, format, invoice_number, created_at, check_message)
		VALUES ('a', 'x.pdf', 'out.xlsx', 'xlsx', 'INV-001', CURRENT_TIMESTAMP, '')`)
	assert.NoError(t, err)
}

func TestMigrator_FailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := NewMigrator(db, nil).RunMigrations(ctx, fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE things (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE nope (")},
	})
	require.Error(t, err)

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestDB_WithTransaction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Exec("CREATE TABLE items (name TEXT)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (name) VALUES ('rolled back')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO items (name) VALUES ('kept')")
		return err
	})
	require.NoError(t, err)

	var names []string
	rows, err := db.Query("SELECT name FROM items")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	assert.Equal(t, []string{"kept"}, names)
}
