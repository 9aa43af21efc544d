package deploy

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	out := map[string]string{}
	for _, f := range r.File {
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func TestZipDirEntries(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "alpha", "b/c.txt": "charlie"})
	dst := filepath.Join(t.TempDir(), "site.zip")

	n, err := ZipDir(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := readZip(t, dst)
	names := make([]string, 0, len(got))
	for name := range got {
		names = append(names, name)
	}
	slices.Sort(names)
	assert.Equal(t, []string{"a.txt", "b/c.txt"}, names)
	assert.Equal(t, "charlie", got["b/c.txt"])
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"index.html": "<h1>hi</h1>", "assets/css/site.css": "body{}"})
	require.NoError(t, os.Mkdir(filepath.Join(src, "empty"), 0o755))
	dst := filepath.Join(t.TempDir(), "copy")

	require.NoError(t, CopyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "assets", "css", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
	info, err := os.Stat(filepath.Join(dst, "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestZipDirMissingSource(t *testing.T) {
	_, err := ZipDir(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "x.zip"))
	require.Error(t, err)
}
