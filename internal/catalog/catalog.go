// Package catalog lists the site templates on sale. Each non-hidden
// subdirectory of the source directory is one product named after it.
package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/core/logger"
)

// ErrNotFound is returned for a product that is not in the catalog.
var ErrNotFound = errors.New("template not found")

// Dir is a catalog backed by a directory tree.
type Dir struct {
	root string
}

// NewDir returns a catalog rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the source directory.
func (d *Dir) Root() string { return d.root }

// List returns product names sorted alphabetically. A missing source
// directory yields an empty catalog.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn(ctx, "catalog", "catalog.list", slog.String("status", "skip"), slog.String("path", d.root))
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", d.root)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && visible(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	logger.Debug(ctx, "catalog", "catalog.list", slog.String("path", d.root), slog.Int("count", len(names)))
	return names, nil
}

// Resolve returns the template directory for product.
func (d *Dir) Resolve(product string) (string, error) {
	if !visible(product) || product != filepath.Base(product) {
		return "", errors.Wrapf(ErrNotFound, "%q", product)
	}
	path := filepath.Join(d.root, product)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", errors.Wrapf(ErrNotFound, "%q", product)
	}
	return path, nil
}

func visible(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".")
}
