package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shadowing-api/config"
)

// openTestDB opens an empty SQLite file under t.TempDir without migrating it.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := NewDB(config.DatabaseConfig{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "shadowing.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestDB opens a fully migrated SQLite database.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db := openTestDB(t)
	_, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}
