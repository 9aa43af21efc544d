package bot

import (
	"log/slog"
	"strings"

	"github.com/m3rciful/sitebot/core/logger"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"
	"github.com/m3rciful/sitebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

func buyerOf(c tele.Context) shop.Buyer {
	u := c.Sender()
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = u.Username
	}
	return shop.Buyer{ID: u.ID, Name: name}
}

// textOnly drops photos in stages that do not expect a proof. Captions
// would otherwise reach the handler as text.
func textOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if msg := c.Message(); msg != nil && msg.Photo != nil {
			logger.Debug(ctxOf(c), "bot", "photo.ignored", slog.Int64("user_id", c.Sender().ID))
			return nil
		}
		return next(c)
	}
}

func (h *Handlers) onAwaitingProof(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return tghelpers.SendText(c, msgPhotoExpected)
	}
	if _, err := h.shop.SubmitProof(ctxOf(c), buyerOf(c), shop.Proof{FileID: msg.Photo.FileID}); err != nil {
		return h.reply(c, err)
	}
	return tghelpers.SendText(c, msgProofReceived)
}

func (h *Handlers) onProofSubmitted(c tele.Context) error {
	return tghelpers.SendText(c, msgProofWaiting)
}

func (h *Handlers) onNameEntry(c tele.Context) error {
	if _, err := shop.NormalizeSiteName(c.Text()); err != nil {
		return h.reply(c, err)
	}
	id := c.Sender().ID
	if pending, ok := h.shop.PendingPayment(id); ok {
		if err := tghelpers.SendMD(c, deployStartedText(pending.Product)); err != nil {
			logger.Debug(ctxOf(c), "bot", "deploy.notice", slog.String("status", "fail"), logger.Err(err))
		}
	}
	dep, err := h.shop.RequestDeploy(ctxOf(c), id, c.Text())
	if err != nil {
		return h.reply(c, err)
	}
	return tghelpers.SendText(c, deployDoneText(dep.URL))
}

func (h *Handlers) onDeploying(c tele.Context) error {
	return tghelpers.SendText(c, msgDeployRunning)
}
