// Package callbacks decodes telebot's inline button payloads.
//
// Buttons built with tele.ReplyMarkup.Data carry "\f<unique>|<payload>" in
// callback_data. When a handler is registered on tele.OnCallback instead of
// the unique endpoint, telebot leaves that raw form in Callback.Data.
package callbacks

import (
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// MaxDataLen is Telegram's limit for callback_data in bytes.
const MaxDataLen = 64

// ErrNoPayload is returned when a button carries no payload.
var ErrNoPayload = errors.New("callbacks: empty payload")

// Parse returns the unique key and payload of cb.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	key, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(key), payload
}

// Key returns the unique key of the current callback.
func Key(c tele.Context) string {
	key, _ := Parse(c.Callback())
	return key
}

// Payload returns the payload of the current callback.
func Payload(c tele.Context) string {
	_, payload := Parse(c.Callback())
	return payload
}

// PayloadInt64 parses the payload as a base-10 int64.
func PayloadInt64(c tele.Context) (int64, error) {
	p := Payload(c)
	if p == "" {
		return 0, ErrNoPayload
	}
	return strconv.ParseInt(p, 10, 64)
}

// Fits reports whether unique and payload encode within MaxDataLen.
func Fits(unique, payload string) bool {
	n := 1 + len(unique)
	if payload != "" {
		n += 1 + len(payload)
	}
	return n <= MaxDataLen
}
