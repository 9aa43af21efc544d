package router

import (
	"time"

	tg "github.com/m3rciful/sitebot/core/telegram"
	"github.com/m3rciful/sitebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is the part of the state manager the message routes need.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// MessageOptions holds handlers for messages nothing else claimed.
type MessageOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownPhoto tele.HandlerFunc
}

// MessageRoutes routes text and photos: an active conversation wins, then
// text commands typed without the menu, then the fallbacks.
func MessageRoutes(fsm FSM, reg *tg.Registry, opts MessageOptions) []tg.Route {
	inConversation := func(c tele.Context) bool {
		return fsm != nil && c.Sender() != nil && fsm.InProgress(c.Sender().ID)
	}

	text := func(c tele.Context) error {
		if inConversation(c) {
			return run(c, "fsm", fsm.ManagerHandler)
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && !cmd.AdminOnly {
				return run(c, handlerName("", key), cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return run(c, "fallback", fb)
			}
		}
		if opts.UnknownText != nil {
			return run(c, "unknown_text", opts.UnknownText)
		}
		summarize(c, "unknown_text", time.Now(), statusSkip, nil)
		return nil
	}

	photo := func(c tele.Context) error {
		if inConversation(c) {
			return run(c, "fsm.photo", fsm.ManagerHandler)
		}
		if opts.UnknownPhoto != nil {
			return run(c, "unexpected_photo", opts.UnknownPhoto)
		}
		summarize(c, "unexpected_photo", time.Now(), statusSkip, nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.LoggerMiddleware(middleware.RecoverMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnPhoto, Handler: wrap(photo)},
	}
}
