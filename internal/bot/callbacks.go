package bot

import (
	"context"
	"log/slog"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"
	"github.com/m3rciful/sitebot/core/telegram/keyboard"
	"github.com/m3rciful/sitebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) paymentKeyboard() *tele.ReplyMarkup {
	rows := [][]keyboard.Btn{}
	if h.opts.PaymentURL != "" {
		rows = append(rows, []keyboard.Btn{{Text: msgPayButton, URL: h.opts.PaymentURL}})
	}
	rows = append(rows, []keyboard.Btn{{Text: msgPaidButton, Unique: cbPaid}})
	return keyboard.Inline(rows...)
}

func (h *Handlers) onBuy(c tele.Context) error {
	product := callbacks.Payload(c)
	if err := h.shop.SelectProduct(ctxOf(c), c.Sender().ID, product); err != nil {
		return h.reply(c, err)
	}
	if err := tghelpers.EditMD(c, productSelectedText(product, h.opts.PriceLabel)); err != nil {
		return err
	}
	return tghelpers.SendText(c, paymentPromptText(h.opts.PaymentURL), h.paymentKeyboard())
}

func (h *Handlers) onPaid(c tele.Context) error {
	if _, err := h.shop.ConfirmPaid(ctxOf(c), c.Sender().ID); err != nil {
		return h.reply(c, err)
	}
	return tghelpers.SendText(c, msgSendProofNow)
}

func (h *Handlers) onApprove(c tele.Context) error {
	return h.review(c, h.shop.Approve)
}

func (h *Handlers) onReject(c tele.Context) error {
	return h.review(c, h.shop.Reject)
}

type decision func(ctx context.Context, actorID, buyerID int64) (*shop.Transaction, error)

func (h *Handlers) review(c tele.Context, decide decision) error {
	ctx := ctxOf(c)
	buyerID, err := callbacks.PayloadInt64(c)
	if err != nil {
		logger.Warn(ctx, "bot", "review.payload", slog.String("status", "skip"), logger.Err(err))
		return nil
	}
	tx, err := decide(ctx, c.Sender().ID, buyerID)
	if err != nil {
		return h.reply(c, err)
	}
	tghelpers.DropKeyboard(c)
	return tghelpers.SendText(c, ownerDecisionText(*tx))
}
