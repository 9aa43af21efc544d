package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the asynchronous sender used by the Send helpers.
// With none installed, sends run inline.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

func dispatch(c tele.Context, action, endpoint string, run func() error) error {
	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("mode", action),
			logger.Err(err),
		)
		return run()
	}
	return err
}

func markupOf(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendText sends plain text to the current chat.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: markupOf(markup)}
	return dispatch(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendMD sends legacy Markdown with an optional keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markupOf(markup)}
	return dispatch(c, "send.md", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditMD replaces the callback's message text; it runs inline so the
// edit lands before the callback is answered.
func EditMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: markupOf(markup),
	})
}

// DropKeyboard removes the inline keyboard from the callback's message.
func DropKeyboard(c tele.Context) {
	if c.Callback() == nil || c.Message() == nil {
		return
	}
	if _, err := c.Bot().EditReplyMarkup(c.Message(), nil); err != nil {
		logger.Debug(BuildContext(c), "tg", "keyboard.drop", slog.String("status", "fail"), logger.Err(err))
	}
}
