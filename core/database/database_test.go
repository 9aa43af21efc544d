package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Host: "db", User: "bot", Password: "p@ss word", Name: "shop"}

	assert.Equal(t, "user=bot password=p@ss word host=db port=5432 dbname=shop sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://bot:p%40ss%20word@db:5432/shop?sslmode=disable", cfg.URL())
}

func TestMigrationFileHelpers(t *testing.T) {
	src := fstest.MapFS{
		"migrations/0002_b.up.sql":   {Data: []byte("select 1;")},
		"migrations/0001_a.up.sql":   {Data: []byte("select 1;")},
		"migrations/0001_a.down.sql": {Data: []byte("select 1;")},
	}

	files := upFiles(src, "migrations")
	assert.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, files)
	assert.Equal(t, 2, countBetween(files, 0, 2))
	assert.Equal(t, 1, countBetween(files, 1, 2))
	assert.Zero(t, countBetween(files, 2, 2))
	assert.Nil(t, upFiles(src, "missing"))
}
