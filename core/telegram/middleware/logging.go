package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const seenTTL = 10 * time.Second

// seenUpdates suppresses duplicate receipt lines when the middleware wraps
// more than one branch of the same update.
var seenUpdates = struct {
	sync.Mutex
	at map[int]time.Time
}{at: make(map[int]time.Time)}

func firstSighting(updateID int) bool {
	now := time.Now()
	seenUpdates.Lock()
	defer seenUpdates.Unlock()
	for id, ts := range seenUpdates.at {
		if now.Sub(ts) > seenTTL {
			delete(seenUpdates.at, id)
		}
	}
	if _, ok := seenUpdates.at[updateID]; ok {
		return false
	}
	seenUpdates.at[updateID] = now
	return true
}

// LoggerMiddleware stores the request context (rid, update, user, chat) on
// the telebot context and logs a sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()
		if !logger.ShouldSampleDebug() || !firstSighting(upd.ID) {
			return next(c)
		}

		attrs := []slog.Attr{slog.String("status", "ok")}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if u := c.Sender(); u != nil && u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		switch {
		case upd.Callback != nil:
			key, payload := callbacks.Parse(upd.Callback)
			attrs = append(attrs,
				slog.String("cb_key", logger.SanitizeLimit(key, 64)),
				slog.String("payload", logger.SanitizeLimit(payload, 128)),
			)
		case upd.Message != nil && upd.Message.Photo != nil:
			attrs = append(attrs, slog.String("payload", "<photo>"))
		case upd.Message != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 128)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)
		return next(c)
	}
}
