// Package ui declares the user-facing hooks a bot supplies to the core
// routers.
package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider supplies replies for updates no route claimed.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownPhoto() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
