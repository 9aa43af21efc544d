package middleware

import (
	"log/slog"

	"github.com/m3rciful/sitebot/core/logger"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AccessOptions configures RestrictTo. Allowed decides per sender id; a nil
// Allowed denies everyone.
type AccessOptions struct {
	Allowed  func(userID int64) bool
	OnDenied tele.HandlerFunc
}

// OnlyUser allows a single user id. Zero allows nobody.
func OnlyUser(id int64) func(int64) bool {
	return func(userID int64) bool { return id != 0 && userID == id }
}

// RestrictTo drops updates from senders Allowed rejects, logging the denial
// and calling OnDenied when set.
func RestrictTo(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			var userID int64
			if u := c.Sender(); u != nil {
				userID = u.ID
			}
			if userID != 0 && opts.Allowed != nil && opts.Allowed(userID) {
				return next(c)
			}
			logger.Info(tghelpers.BuildContext(c), "tg", "access.denied",
				slog.Int64("user_id", userID),
				slog.String("text", logger.SanitizeLimit(c.Text(), 32)),
			)
			if opts.OnDenied != nil {
				return opts.OnDenied(c)
			}
			return nil
		}
	}
}
