package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirList(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"shop-template", "landing", ".git"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644))

	got, err := NewDir(root).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"landing", "shop-template"}, got)
}

func TestDirListMissingRoot(t *testing.T) {
	got, err := NewDir(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDirResolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "landing"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o644))
	d := NewDir(root)

	path, err := d.Resolve("landing")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "landing"), path)

	for _, bad := range []string{"", "missing", "notes.txt", "../landing", ".hidden"} {
		_, err := d.Resolve(bad)
		assert.ErrorIs(t, err, ErrNotFound, bad)
	}
}
