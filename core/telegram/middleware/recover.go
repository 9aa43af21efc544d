package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/sitebot/core/logger"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a handler panic into a logged error.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
				logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
					logger.Err(err),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
