package bot

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/core/telegram/callbacks"
	"github.com/m3rciful/sitebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"
	"github.com/m3rciful/sitebot/core/telegram/keyboard"
	"github.com/m3rciful/sitebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) commands() map[string]commands.Command {
	return map[string]commands.Command{
		"/start":   {Handler: h.onStart, Description: "Start and browse products"},
		"/buy":     {Handler: h.onBrowse, Description: "Browse products", Aliases: []string{"/shop"}},
		"/status":  {Handler: h.onStatus, Description: "Show your purchases"},
		"/cancel":  {Handler: h.onCancel, Description: "Cancel the current selection"},
		"/help":    {Handler: h.onHelp, Description: "List commands"},
		"/history": {Handler: h.onHistory, Description: "All transactions", AdminOnly: true, Hidden: true},
	}
}

func (h *Handlers) onStart(c tele.Context) error {
	if err := tghelpers.SendText(c, msgWelcome); err != nil {
		return err
	}
	return h.onBrowse(c)
}

// productKeyboard lists products one per row. Names too long for
// callback data are left out.
func productKeyboard(products []string) *tele.ReplyMarkup {
	btns := make([]keyboard.Btn, 0, len(products))
	for _, p := range products {
		if !callbacks.Fits(cbBuy, p) {
			continue
		}
		btns = append(btns, keyboard.Btn{Text: p, Unique: cbBuy, Data: p})
	}
	return keyboard.Grid(btns, 1)
}

func (h *Handlers) onBrowse(c tele.Context) error {
	products, err := h.shop.Browse(ctxOf(c))
	if err != nil {
		return h.reply(c, err)
	}
	return tghelpers.SendText(c, msgChooseProduct, productKeyboard(products))
}

func (h *Handlers) onStatus(c tele.Context) error {
	report, err := h.shop.Status(ctxOf(c), c.Sender().ID)
	if err != nil {
		return h.reply(c, err)
	}
	return tghelpers.SendMD(c, statusText(*report))
}

func (h *Handlers) onCancel(c tele.Context) error {
	id := c.Sender().ID
	if h.shop.Stage(id) == shop.StageIdle {
		return tghelpers.SendText(c, msgNothingToCancel)
	}
	if err := h.shop.Cancel(ctxOf(c), id); err != nil {
		if errors.Is(err, shop.ErrBusy) {
			return tghelpers.SendText(c, msgCannotCancel)
		}
		return h.reply(c, err)
	}
	return tghelpers.SendText(c, msgCancelled)
}

func (h *Handlers) onHelp(c tele.Context) error {
	var lines []string
	if h.reg != nil {
		for _, cmd := range h.reg.ListCommands(true) {
			lines = append(lines, fmt.Sprintf("/%s - %s", cmd.Text, cmd.Description))
		}
	}
	return tghelpers.SendText(c, helpText(lines))
}

func (h *Handlers) onHistory(c tele.Context) error {
	txs, err := h.shop.History(ctxOf(c), c.Sender().ID)
	if errors.Is(err, shop.ErrNoTransactions) {
		return tghelpers.SendText(c, msgNoHistory)
	}
	if err != nil {
		return h.reply(c, err)
	}
	return tghelpers.SendMD(c, historyText(txs))
}
