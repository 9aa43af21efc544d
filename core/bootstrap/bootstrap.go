package bootstrap

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/sitebot/core/config"
	coredatabase "github.com/m3rciful/sitebot/core/database"
	"github.com/m3rciful/sitebot/core/logger"
)

// Options control the shared startup pipeline. Database is optional; when
// nil only the logger is initialised.
type Options struct {
	Config   *coreconfig.Config
	Database *coredatabase.Config

	// Migrations and MigrationsDir locate the schema applied after connect.
	Migrations    fs.FS
	MigrationsDir string

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(context.Context, coredatabase.Config, fs.FS, string) error
}

// Result exposes infrastructure initialised by Run.
type Result struct {
	DB *sqlx.DB
}

// Run initialises the logger, then connects and migrates the database when
// one is configured.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	if opts.Database == nil {
		return &Result{}, nil
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, *opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if opts.Migrations != nil {
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(ctx, *opts.Database, opts.Migrations, opts.MigrationsDir); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}
	return &Result{DB: db}, nil
}
