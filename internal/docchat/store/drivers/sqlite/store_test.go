package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/docchat/internal/docchat/store/drivers/sqlite"
	"github.com/aussiebroadwan/docchat/internal/docchat/store/storetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, dsn string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations(context.Background()))
	return s
}

func TestStore_Memory(t *testing.T) {
	storetest.Run(t, newStore(t, ":memory:"))
}

func TestStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.db")
	storetest.Run(t, newStore(t, sqlite.DSN(path)))
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	s := newStore(t, ":memory:")
	require.NoError(t, s.ApplyMigrations(context.Background()))
}

func TestEmailUniqueIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, ":memory:")

	require.NoError(t, s.Users().CreateUser(ctx, storetest.NewUser("case@example.com")))
	err := s.Users().CreateUser(ctx, storetest.NewUser("CASE@example.com"))
	require.Error(t, err)
}
