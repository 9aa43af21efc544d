package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot
}

func textUpdate(id int, userID int64, text string) tele.Update {
	return tele.Update{ID: id, Message: &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		Text:   text,
	}}
}

func TestRateLimitMiddleware(t *testing.T) {
	bot := offlineBot(t)
	var handled, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	h := mw(func(tele.Context) error { handled++; return nil })

	require.NoError(t, h(bot.NewContext(textUpdate(1, 7, "hi"))))
	require.NoError(t, h(bot.NewContext(textUpdate(2, 7, "again"))))
	require.NoError(t, h(bot.NewContext(textUpdate(3, 8, "other user"))))
	cb := tele.Update{ID: 4, Callback: &tele.Callback{Sender: &tele.User{ID: 7}, Data: "\fpaid"}}
	require.NoError(t, h(bot.NewContext(cb)))

	assert.Equal(t, 3, handled)
	assert.Equal(t, 1, limited)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "message", UpdateKind(textUpdate(1, 1, "x")))
	assert.Equal(t, "photo", UpdateKind(tele.Update{Message: &tele.Message{Photo: &tele.Photo{}}}))
	assert.Equal(t, "callback", UpdateKind(tele.Update{Callback: &tele.Callback{}}))
	assert.Equal(t, "other", UpdateKind(tele.Update{}))
}

func TestRestrictTo(t *testing.T) {
	bot := offlineBot(t)
	var denied int
	h := RestrictTo(AccessOptions{
		Allowed:  OnlyUser(99),
		OnDenied: func(tele.Context) error { denied++; return nil },
	})(func(tele.Context) error { return errors.New("reached") })

	assert.EqualError(t, h(bot.NewContext(textUpdate(1, 99, "/history"))), "reached")
	assert.NoError(t, h(bot.NewContext(textUpdate(2, 5, "/history"))))
	assert.Equal(t, 1, denied)

	closed := RestrictTo(AccessOptions{})(func(tele.Context) error { return errors.New("reached") })
	assert.NoError(t, closed(bot.NewContext(textUpdate(3, 99, "/history"))))
	assert.False(t, OnlyUser(0)(0))
}

func TestRecoverMiddleware(t *testing.T) {
	bot := offlineBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })

	err := h(bot.NewContext(textUpdate(1, 1, "x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMessageMetricsMiddleware(t *testing.T) {
	bot := offlineBot(t)
	c := bot.NewContext(textUpdate(1, 1, "x"))

	var msgs int
	var kb bool
	err := MessageMetricsMiddleware(func(c tele.Context) error {
		_, isCounting := c.(countingContext)
		assert.True(t, isCounting)
		msgs, kb = GetCounters(c)
		return nil
	})(c)
	require.NoError(t, err)
	assert.Zero(t, msgs)
	assert.False(t, kb)

	assert.True(t, hasKeyboard([]any{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}}))
	assert.False(t, hasKeyboard([]any{tele.ModeMarkdown}))
}

func TestLoggerMiddlewareStoresContext(t *testing.T) {
	bot := offlineBot(t)
	c := bot.NewContext(textUpdate(42, 7, "hello"))

	require.NoError(t, LoggerMiddleware(func(tele.Context) error { return nil })(c))
	assert.NotNil(t, c.Get("logger_ctx"))
	assert.True(t, firstSighting(1000))
	assert.False(t, firstSighting(1000))
}
