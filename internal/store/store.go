// Package store persists shop transactions. Three backends share the
// shop.Store contract: a JSON file, an embedded SQLite database and
// PostgreSQL.
package store

import (
	"embed"
	"slices"

	"github.com/m3rciful/sitebot/internal/shop"
)

// Driver names accepted by configuration.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Migrations holds the PostgreSQL schema, applied by core/database.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

// Drivers lists the supported backends.
func Drivers() []string {
	return []string{DriverJSON, DriverSQLite, DriverPostgres}
}

// Supported reports whether driver names a known backend.
func Supported(driver string) bool {
	return slices.Contains(Drivers(), driver)
}

var (
	_ shop.Store = (*JSONStore)(nil)
	_ shop.Store = (*SQLiteStore)(nil)
	_ shop.Store = (*PostgresStore)(nil)
)
