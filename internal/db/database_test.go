package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost:5432/shop?sslmode=disable"))
	assert.True(t, IsPostgres("postgresql://localhost/shop"))
	assert.True(t, IsPostgres("host=localhost user=u dbname=shop"))
	assert.False(t, IsPostgres("market.db"))
	assert.False(t, IsPostgres(":memory:"))
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestOpenAndMigrate_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.db")

	gdb, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	require.NoError(t, Migrate(gdb))
	require.NoError(t, Ping(context.Background(), gdb))

	for _, m := range models.All() {
		assert.True(t, gdb.Migrator().HasTable(m), "missing table for %T", m)
	}
}
