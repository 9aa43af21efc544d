package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/sitebot/core/logger"
	tg "github.com/m3rciful/sitebot/core/telegram"
	"github.com/m3rciful/sitebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures admin-only enforcement.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes builds one route per registered command, aliases included.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	admin := middleware.RestrictTo(middleware.AccessOptions{
		Allowed:  middleware.OnlyUser(opts.AdminID),
		OnDenied: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		h := def.Handler
		if def.AdminOnly {
			h = admin(h)
		}
		h = withSummary(handlerName("", name), h)
		h = middleware.LoggerMiddleware(middleware.RecoverMiddleware(h))

		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
		for _, alias := range def.Aliases {
			if alias != "" && alias[0] != '/' {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.Info(context.Background(), "tg.wire", "wire.complete",
		slog.Int("count", len(cmds)),
		slog.String("payload", joinKeys(reg.ListCallbacks())),
	)
	return routes
}

func withSummary(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return run(c, name, h)
	}
}

func joinKeys(keys []string) string {
	s, _ := logger.SummarizeStrings(keys, 10)
	return s
}
