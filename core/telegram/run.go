package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/sitebot/core/config"
	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/core/netutil"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"
	tgsender "github.com/m3rciful/sitebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint (command, tele.OnText, ...).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config *coreconfig.Config
	// Bot is used as is when set; otherwise NewBot builds one from Config.
	Bot      *tele.Bot
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes running components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// NewBot creates a bot with the configured poller and a retrying HTTP
// client. It calls getMe, so the token is validated here.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}
	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		URL:    cfg.Telegram.APIURL,
		Token:  cfg.Telegram.Token,
		Poller: BuildPoller(cfg),
		Client: netutil.NewHTTPClient(netutil.ClientOptions{
			Timeout: longPollTimeout(cfg) + 20*time.Second,
			Retries: 2,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logger.Info(context.Background(), "tg", "bot.init",
		slog.String("status", "ok"),
		slog.String("username", bot.Me.Username),
		slog.Duration("duration", logger.Took(start)),
	)
	return bot, nil
}

// RunTelegram wires middlewares and routes, then serves updates until ctx
// is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config

	bot := opts.Bot
	if bot == nil {
		var err error
		if bot, err = NewBot(cfg); err != nil {
			return err
		}
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	logMode(ctx, cfg, bot, opts.DisableWebhookCleanup)

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	SetupCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		runErr = ctx.Err()
	case <-done:
	}

	if opts.OnStop != nil {
		// ctx is already cancelled here; stop hooks get a fresh deadline.
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := opts.OnStop(stopCtx, rt); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func logMode(ctx context.Context, cfg *coreconfig.Config, bot *tele.Bot, skipCleanup bool) {
	if wh, ok := bot.Poller.(*tele.Webhook); ok {
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "webhook"),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
		)
		return
	}
	logger.Info(ctx, "tg", "mode",
		slog.String("mode", "polling"),
		slog.Duration("timeout", longPollTimeout(cfg)),
	)
	if skipCleanup {
		return
	}
	// A stale webhook makes getUpdates fail with 409.
	if err := bot.RemoveWebhook(false); err != nil {
		logger.Warn(ctx, "tg", "webhook.delete", slog.String("status", "fail"), logger.Err(err))
		return
	}
	logger.Debug(ctx, "tg", "webhook.delete", slog.String("status", "ok"))
}
