// Package router turns registry entries and FSM state into telebot routes
// and emits one handler.handled summary per update.
package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/sitebot/core/logger"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"
	"github.com/m3rciful/sitebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Status values of the handled summary.
const (
	statusOK   = "ok"
	statusFail = "fail"
	statusSkip = "skip"
)

// run executes fn under handlerName and logs the summary.
func run(c tele.Context, handlerName string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	tghelpers.WithHandler(c, handlerName)
	err := fn(c)
	summarize(c, handlerName, start, "", err, extras...)
	return err
}

func summarize(c tele.Context, handlerName string, start time.Time, status string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := middleware.GetCounters(c)

	outcome := statusOK
	if err != nil {
		outcome = statusFail
	}
	if status == "" {
		status = outcome
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			logger.Err(err),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Event(ctx, "tg", level, "handler.handled", append(attrs, extras...)...)
}

func handlerName(prefix, name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		name = "unknown"
	}
	name = strings.ReplaceAll(name, " ", "_")
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// errorCode prefers an explicit Code() anywhere in the chain and falls back
// to the dynamic type name of the outermost error.
func errorCode(err error) string {
	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}
