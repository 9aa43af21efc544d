package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/sitebot/core/logger"
)

// RunMigrations applies every pending up migration found in dir of src.
// Migrations are usually embedded next to the store that owns the schema.
func RunMigrations(ctx context.Context, cfg Config, src fs.FS, dir string) error {
	if err := WaitForPostgres(ctx, cfg.DSN(), 30*time.Second, 2*time.Second); err != nil {
		logger.Error(ctx, "db.migrate", "db.migrate", slog.String("status", "fail"), logger.Err(err))
		return fmt.Errorf("database not ready: %w", err)
	}

	files := upFiles(src, dir)
	preview, truncated := logger.SummarizeStrings(files, 6)
	logger.Debug(ctx, "db.migrate", "migrate.resolve",
		slog.String("path", dir),
		slog.Int("count", len(files)),
		slog.String("payload", preview),
		slog.Bool("truncated", truncated),
	)

	source, err := iofs.New(src, dir)
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.URL())
	if err != nil {
		logger.Error(ctx, "db.migrate", "db.migrate", slog.String("status", "fail"), logger.Err(err))
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	from, _, _ := m.Version()
	start := time.Now()
	upErr := m.Up()
	took := logger.Took(start)
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.Error(ctx, "db.migrate", "migrate.apply",
			slog.String("status", "fail"),
			slog.Duration("duration", took),
			logger.Err(upErr),
		)
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	to, _, _ := m.Version()

	logger.Info(ctx, "db.migrate", "migrate.summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("count", countBetween(files, uint64(from), uint64(to))),
		slog.Duration("duration", took),
	)
	return nil
}

func upFiles(src fs.FS, dir string) []string {
	entries, err := fs.ReadDir(src, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

func countBetween(files []string, from, to uint64) int {
	n := 0
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			n++
		}
	}
	return n
}
