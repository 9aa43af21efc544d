package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/sitebot/internal/shop"
)

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "sitebot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, func(t *testing.T) shop.Store { return openSQLite(t) })
}

func TestSQLiteStoreOneWaitingPerBuyer(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, sample(1, 3, shop.StatusWaiting)))

	err := s.Append(ctx, sample(2, 3, shop.StatusWaiting))
	require.ErrorIs(t, err, shop.ErrAlreadyPending)

	require.NoError(t, s.Append(ctx, sample(3, 3, shop.StatusRejected)))
	all, err := s.ListByBuyer(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSupported(t *testing.T) {
	for _, d := range Drivers() {
		assert.True(t, Supported(d), d)
	}
	assert.False(t, Supported("mongo"))
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := Migrations.ReadFile("migrations/0001_transactions.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "transactions_one_waiting_idx")
}
