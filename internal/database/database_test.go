package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/database"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(filepath.Join(t.TempDir(), "nested", "tally.db"))
	require.NoError(t, err)
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, database.Latest(), applied)

	v, err := database.Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, database.Latest(), v)

	again, err := database.Migrate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, again)

	for _, table := range []string{"chart_of_accounts", "journal_entries", "postings", "account_balances"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}
