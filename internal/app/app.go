// Package app assembles the sitebot components into a runnable Telegram
// application.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/core/bootstrap"
	corecmd "github.com/m3rciful/sitebot/core/cmd"
	coredatabase "github.com/m3rciful/sitebot/core/database"
	"github.com/m3rciful/sitebot/core/logger"
	tg "github.com/m3rciful/sitebot/core/telegram"
	tgsender "github.com/m3rciful/sitebot/core/telegram/sender"
	"github.com/m3rciful/sitebot/core/telegram/state"
	"github.com/m3rciful/sitebot/internal/bot"
	"github.com/m3rciful/sitebot/internal/catalog"
	"github.com/m3rciful/sitebot/internal/config"
	"github.com/m3rciful/sitebot/internal/deploy"
	"github.com/m3rciful/sitebot/internal/shop"
	"github.com/m3rciful/sitebot/internal/store"

	tele "gopkg.in/telebot.v4"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Bot        *tele.Bot
	Registry   *tg.Registry
	Dispatcher *tgsender.Dispatcher
	Sessions   state.Manager
	Store      shop.Store
	Machine    *shop.Machine
	Handlers   *bot.Handlers

	closers []io.Closer
}

// Bootstrap initialises logging and the database (postgres driver only),
// creates the bot and wires everything. It matches corecmd.Options.Bootstrap.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, errors.Newf("app: unexpected config type %T", carrier)
	}

	opts := bootstrap.Options{Config: cfg.CoreConfig()}
	if cfg.Store.Driver == store.DriverPostgres {
		opts.Database = &cfg.Store.Database
		opts.Migrations = store.Migrations
		opts.MigrationsDir = store.MigrationsDir
	}
	res, err := bootstrap.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	b, err := tg.NewBot(cfg.CoreConfig())
	if err != nil {
		if res.DB != nil {
			_ = res.DB.Close()
		}
		return nil, err
	}

	var st shop.Store
	if res.DB != nil {
		st = store.NewPostgres(res.DB)
	}
	a, err := Build(ctx, cfg, b, st)
	if err != nil {
		if res.DB != nil {
			_ = res.DB.Close()
		}
		return nil, err
	}
	if res.DB != nil {
		a.closers = append(a.closers, res.DB)
	}
	return a, nil
}

// Build wires the application around an existing bot. When st is nil the
// store is opened from cfg.Store.
func Build(ctx context.Context, cfg *config.Config, b *tele.Bot, st shop.Store) (*App, error) {
	if cfg == nil || b == nil {
		return nil, errors.New("app: config and bot are required")
	}
	a := &App{
		Config:   cfg,
		Bot:      b,
		Registry: tg.NewRegistry(),
		Sessions: state.NewMemoryManager(),
	}
	if st == nil {
		var err error
		if st, err = a.openStore(ctx); err != nil {
			return nil, err
		}
	}
	a.Store = st

	templates := catalog.NewDir(cfg.Shop.SourceDir)
	client := deploy.NewClient(deploy.ClientConfig{
		Endpoint: cfg.Deploy.Endpoint,
		Token:    cfg.Deploy.Token,
		Timeout:  cfg.Deploy.Timeout,
	})
	pipeline := deploy.NewPipeline(templates, client, deploy.Options{
		WorkDir:       cfg.Deploy.WorkDir,
		Timeout:       cfg.Deploy.Timeout,
		MaxConcurrent: cfg.Deploy.MaxConcurrent,
	})

	a.Dispatcher = tgsender.NewDispatcher(tgsender.Options{MaxRetries: 2})
	m, err := shop.NewMachine(shop.Config{OwnerID: cfg.Shop.OwnerID}, shop.Deps{
		Sessions:  a.Sessions,
		Store:     st,
		Catalog:   templates,
		Publisher: pipeline,
		Proofs:    bot.NewProofResolver(b),
		Notifier:  bot.NewNotifier(b, a.Dispatcher, cfg.Shop.OwnerID),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Machine = m

	a.Handlers = bot.New(m, bot.Options{
		PriceLabel: cfg.Shop.PriceLabel,
		PaymentURL: cfg.Shop.PaymentURL,
	})
	if err := a.Handlers.Register(a.Registry, a.Sessions); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info(ctx, "app", "wired",
		slog.String("store", cfg.Store.Driver),
		slog.String("source_dir", templates.Root()),
		slog.Int64("owner_id", cfg.Shop.OwnerID),
		slog.Int("commands", len(a.Registry.Commands())),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (shop.Store, error) {
	switch a.Config.Store.Driver {
	case store.DriverJSON:
		return store.NewJSON(a.Config.Store.Path), nil
	case store.DriverSQLite:
		s, err := store.NewSQLite(ctx, a.Config.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case store.DriverPostgres:
		db, err := coredatabase.Connect(ctx, a.Config.Store.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		return store.NewPostgres(db), nil
	}
	return nil, errors.Newf("app: unsupported store driver %q", a.Config.Store.Driver)
}

// TelegramRunOptions returns the options for tg.RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      a.Config.CoreConfig(),
		Bot:         a.Bot,
		Registry:    a.Registry,
		Dispatcher:  a.Dispatcher,
		Middlewares: tg.DefaultMiddlewares(a.Config.CoreConfig(), a.Handlers.RateLimited),
		Routes:      a.Handlers.Routes(a.Registry, a.Sessions),
		OnStop: func(context.Context, tg.Runtime) error {
			a.Close()
			return nil
		},
	}, nil
}

// Close drains queued notifications and releases store connections.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Warn(context.Background(), "app", "close", logger.Err(err))
		}
	}
	a.closers = nil
}
