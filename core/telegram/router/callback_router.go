package router

import (
	"log/slog"

	tg "github.com/m3rciful/sitebot/core/telegram"
	"github.com/m3rciful/sitebot/core/telegram/callbacks"
	"github.com/m3rciful/sitebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute dispatches every inline button press through the registry
// by its unique key. The callback is answered before the handler runs so
// the client spinner stops even when the handler is slow.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.Key(c)
		extras := []slog.Attr{slog.String("cb_key", key)}

		h, ok := reg.GetCallback(key)
		if !ok {
			return run(c, handlerName("callback", "not_found"), reg.CallbackNotFound(), extras...)
		}
		_ = c.Respond()
		return run(c, handlerName("callback", key), h, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.LoggerMiddleware(middleware.RecoverMiddleware(handler)),
	}
}
