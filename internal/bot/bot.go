// Package bot drives the purchase conversation over Telegram: commands,
// inline buttons, stage handlers and outbound notifications.
package bot

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/core/logger"
	tg "github.com/m3rciful/sitebot/core/telegram"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"
	"github.com/m3rciful/sitebot/core/telegram/router"
	"github.com/m3rciful/sitebot/core/telegram/state"
	"github.com/m3rciful/sitebot/core/telegram/ui"
	"github.com/m3rciful/sitebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques.
const (
	cbBuy     = "buy"
	cbPaid    = "paid"
	cbApprove = "approve"
	cbReject  = "reject"
)

// Options holds the storefront texts.
type Options struct {
	PriceLabel string
	PaymentURL string
}

// Handlers binds a shop.Machine to Telegram updates.
type Handlers struct {
	shop *shop.Machine
	opts Options
	reg  *tg.Registry
}

// New returns Handlers for m.
func New(m *shop.Machine, opts Options) *Handlers {
	return &Handlers{shop: m, opts: opts}
}

// Register adds commands, callbacks and stage handlers.
func (h *Handlers) Register(reg *tg.Registry, sessions state.Manager) error {
	h.reg = reg
	for name, cmd := range h.commands() {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return err
		}
	}
	for key, fn := range map[string]tele.HandlerFunc{
		cbBuy:     h.onBuy,
		cbPaid:    h.onPaid,
		cbApprove: h.onApprove,
		cbReject:  h.onReject,
	} {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return err
		}
	}
	reg.SetCallbackNotFound(h.UnknownCallback())

	sessions.Handle(shop.StageAwaitingProof, h.onAwaitingProof)
	sessions.Handle(shop.StageProofSubmitted, textOnly(h.onProofSubmitted))
	sessions.Handle(shop.StageNameEntry, textOnly(h.onNameEntry))
	sessions.Handle(shop.StageDeploying, textOnly(h.onDeploying))
	return nil
}

// Routes returns every telebot route of the bot.
func (h *Handlers) Routes(reg *tg.Registry, sessions state.Manager) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       h.shop.OwnerID(),
		OnAdminReject: h.ownerOnly,
	})
	routes = append(routes, router.CallbackRoute(reg))
	return append(routes, router.MessageRoutes(sessions, reg, router.MessageOptions{
		UnknownText:  h.UnknownText(),
		UnknownPhoto: h.UnknownPhoto(),
	})...)
}

// UnknownText nudges users who type outside a conversation.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownText)
	}
}

// UnknownPhoto ignores photos sent without a selected product.
func (h *Handlers) UnknownPhoto() tele.HandlerFunc {
	return nil
}

// UnknownCallback answers presses of buttons that no longer exist.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: msgButtonExpired})
	}
}

// RateLimited answers throttled users.
func (h *Handlers) RateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgRateLimited})
	}
	return nil
}

var _ ui.FallbackProvider = (*Handlers)(nil)

func (h *Handlers) ownerOnly(c tele.Context) error {
	return tghelpers.SendText(c, msgOwnerOnly)
}

func ctxOf(c tele.Context) context.Context {
	return tghelpers.BuildContext(c)
}

// reply maps a shop error to a user message. Expected conditions are
// answered and swallowed; anything else is reported and returned.
func (h *Handlers) reply(c tele.Context, err error) error {
	if err == nil || shop.Silent(err) {
		return nil
	}
	var text string
	switch {
	case errors.Is(err, shop.ErrEmptyCatalog):
		text = msgNoProducts
	case errors.Is(err, shop.ErrUnknownProduct):
		text = msgUnknownProduct
	case errors.Is(err, shop.ErrBusy):
		text = msgBusy
	case errors.Is(err, shop.ErrAlreadyPending):
		text = msgAlreadyPending
	case errors.Is(err, shop.ErrNotOwner):
		text = msgOwnerOnly
	case errors.Is(err, shop.ErrNotApproved):
		text = msgNotApproved
	case errors.Is(err, shop.ErrNoPendingPayment):
		text = msgNoPending
	case errors.Is(err, shop.ErrDeployInProgress):
		text = msgDeployRunning
	case errors.Is(err, shop.ErrInvalidName):
		text = msgInvalidName
	case errors.Is(err, shop.ErrNoTransactions):
		text = msgNoTransactions
	case errors.Is(err, shop.ErrDeployFailed):
		_ = tghelpers.SendText(c, msgDeployFailed)
		return err
	default:
		logger.Warn(ctxOf(c), "bot", "reply.generic", slog.String("status", "fail"), logger.Err(err))
		_ = tghelpers.SendText(c, msgGeneric)
		return err
	}
	return tghelpers.SendText(c, text)
}
