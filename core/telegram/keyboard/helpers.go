// Package keyboard builds telebot reply markups.
package keyboard

import tele "gopkg.in/telebot.v4"

// Btn describes an inline button: a callback button when Unique is set,
// a link button when URL is set.
type Btn struct {
	Text   string
	Unique string
	Data   string
	URL    string
}

// Inline builds an inline keyboard from rows of buttons.
func Inline(rows ...[]Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	keyboard := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			var btn tele.Btn
			if b.URL != "" {
				btn = markup.URL(b.Text, b.URL)
			} else {
				btn = markup.Data(b.Text, b.Unique, b.Data)
			}
			r = append(r, *btn.Inline())
		}
		if len(r) > 0 {
			keyboard = append(keyboard, r)
		}
	}
	markup.InlineKeyboard = keyboard
	return markup
}

// Grid lays buttons out perRow to a row; perRow <= 1 puts each on its own row.
func Grid(buttons []Btn, perRow int) *tele.ReplyMarkup {
	if perRow < 1 {
		perRow = 1
	}
	var rows [][]Btn
	for i := 0; i < len(buttons); i += perRow {
		rows = append(rows, buttons[i:min(i+perRow, len(buttons))])
	}
	return Inline(rows...)
}

// RemoveKeyboard hides a reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
