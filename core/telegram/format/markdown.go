// Package format escapes user supplied text for Telegram's legacy Markdown
// parse mode.
package format

import "strings"

var mdReplacer = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// MD escapes text for legacy Markdown.
func MD(text string) string {
	return mdReplacer.Replace(text)
}

// Code wraps text in an inline code span for legacy Markdown. Backticks
// cannot be escaped inside a span, so they are dropped.
func Code(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "") + "`"
}
