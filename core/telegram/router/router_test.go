package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/sitebot/core/telegram"
	"github.com/m3rciful/sitebot/core/telegram/commands"
)

type fakeFSM struct {
	active  map[int64]bool
	handled int
}

func (f *fakeFSM) InProgress(userID int64) bool { return f.active[userID] }

func (f *fakeFSM) ManagerHandler(tele.Context) error {
	f.handled++
	return nil
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "deploy failed" }

func newContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot.NewContext(upd)
}

func message(userID int64, text string) tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
		Text:   text,
	}}
}

func TestMessageRoutesPriority(t *testing.T) {
	fsm := &fakeFSM{active: map[int64]bool{1: true}}
	reg := tg.NewRegistry()
	var buy, history, fallback int
	require.NoError(t, reg.RegisterCommand("/buy", commands.Command{
		Description: "Buy",
		Handler:     func(tele.Context) error { buy++; return nil },
	}))
	require.NoError(t, reg.RegisterCommand("/history", commands.Command{
		Description: "History",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { history++; return nil },
	}))
	reg.SetTextFallback(func(tele.Context) error { fallback++; return nil })

	routes := MessageRoutes(fsm, reg, MessageOptions{})
	require.Len(t, routes, 2)
	text, photo := routes[0].Handler, routes[1].Handler
	assert.Equal(t, tele.OnText, routes[0].Endpoint)
	assert.Equal(t, tele.OnPhoto, routes[1].Endpoint)

	require.NoError(t, text(newContext(t, message(1, "buy"))))
	assert.Equal(t, 1, fsm.handled)

	require.NoError(t, text(newContext(t, message(2, "buy"))))
	assert.Equal(t, 1, buy)

	require.NoError(t, text(newContext(t, message(2, "history"))))
	assert.Zero(t, history)
	assert.Equal(t, 1, fallback)

	photoUpd := message(2, "")
	photoUpd.Message.Photo = &tele.Photo{File: tele.File{FileID: "f"}}
	require.NoError(t, photo(newContext(t, photoUpd)))
	assert.Equal(t, 1, fsm.handled)

	photoUpd = message(1, "")
	photoUpd.Message.Photo = &tele.Photo{File: tele.File{FileID: "f"}}
	require.NoError(t, photo(newContext(t, photoUpd)))
	assert.Equal(t, 2, fsm.handled)
}

func TestCallbackRouteDispatchesByKey(t *testing.T) {
	reg := tg.NewRegistry()
	var got string
	require.NoError(t, reg.RegisterCallback("approve", func(c tele.Context) error {
		got = c.Callback().Data
		return nil
	}))
	var notFound int
	reg.SetCallbackNotFound(func(tele.Context) error { notFound++; return nil })

	route := CallbackRoute(reg)
	assert.Equal(t, tele.OnCallback, route.Endpoint)

	cb := func(data string) tele.Update {
		return tele.Update{ID: 3, Callback: &tele.Callback{Sender: &tele.User{ID: 9}, Data: data}}
	}
	require.NoError(t, route.Handler(newContext(t, cb("\fmissing|1"))))
	assert.Equal(t, 1, notFound)
	assert.Empty(t, got)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "DEPLOY_FAILED", errorCode(codedErr{}))
	assert.Equal(t, "DEPLOY_FAILED", errorCode(fmt.Errorf("wrap: %w", codedErr{})))
	assert.Equal(t, "ERRORSTRING", errorCode(errors.New("plain")))
}

func TestHandlerName(t *testing.T) {
	assert.Equal(t, "start", handlerName("", "/Start"))
	assert.Equal(t, "callback.buy", handlerName("callback", "buy"))
	assert.Equal(t, "callback.unknown", handlerName("callback", " "))
}
