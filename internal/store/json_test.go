package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/sitebot/internal/shop"
)

func TestJSONStore(t *testing.T) {
	testStore(t, func(t *testing.T) shop.Store {
		return NewJSON(filepath.Join(t.TempDir(), "data", "transactions.json"))
	})
}

func TestJSONStoreFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	s := NewJSON(path)
	require.NoError(t, s.Append(context.Background(), sample(1, 5, shop.StatusWaiting)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n"), "pretty printed array: %q", text)
	for _, key := range []string{`"buyerId": 5`, `"buyerName"`, `"product"`, `"proofUrl"`, `"status": "waiting"`} {
		assert.Contains(t, text, key)
	}
	assert.NotContains(t, text, "deployUrl")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestJSONStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transactions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewJSON(path)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.Append(ctx, sample(1, 5, shop.StatusWaiting)))
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	aside, err := os.ReadFile(path + ".corrupt-1700000000")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(aside))
}

func TestJSONStoreUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := NewJSON(filepath.Join(blocker, "transactions.json"))
	err := s.Append(context.Background(), sample(1, 5, shop.StatusWaiting))
	require.Error(t, err)

	all, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
