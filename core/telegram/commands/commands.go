// Package commands describes slash commands exposed by a bot.
package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command with its menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are rejected for everyone except the configured admin.
	AdminOnly bool
	// Hidden commands are routable but left out of the Telegram menu.
	Hidden  bool
	Aliases []string
}
