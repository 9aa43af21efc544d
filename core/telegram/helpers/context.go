// Package helpers bridges telebot contexts with the logger context and the
// asynchronous sender.
package helpers

import (
	"context"

	"github.com/m3rciful/sitebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// requestKey holds the per-update context on tele.Context.
const requestKey = "sitebot.request_ctx"

func attach(c tele.Context, ctx context.Context) context.Context {
	if c != nil && ctx != nil {
		c.Set(requestKey, ctx)
	}
	return ctx
}

func cached(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(requestKey).(context.Context)
	return ctx, ok
}

// participants returns the sender and chat ids; zero when absent.
func participants(c tele.Context) (userID, chatID int64) {
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	return userID, chatID
}

// BuildContext returns the request context of the update, creating it on
// first use with the rid and update, user and chat ids.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := cached(c); ok {
		return ctx
	}
	if c == nil {
		return context.Background()
	}
	userID, chatID := participants(c)
	updateID := c.Update().ID
	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	return attach(c, logger.WithUpdateMeta(ctx, updateID, userID, chatID))
}

// WithHandler tags the request context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	return attach(c, logger.WithHandler(ctx, handler))
}
