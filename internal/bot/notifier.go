package bot

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/core/telegram/keyboard"
	tgsender "github.com/m3rciful/sitebot/core/telegram/sender"
	"github.com/m3rciful/sitebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

// Sender is the part of *tele.Bot used for out-of-band messages.
type Sender interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

// Notifier messages the owner and buyers outside the current update.
type Notifier struct {
	sender     Sender
	dispatcher *tgsender.Dispatcher
	ownerID    int64
}

// NewNotifier returns a Notifier. With a dispatcher, sends are queued and
// retried there; without one they run inline.
func NewNotifier(s Sender, d *tgsender.Dispatcher, ownerID int64) *Notifier {
	return &Notifier{sender: s, dispatcher: d, ownerID: ownerID}
}

func reviewKeyboard(buyerID int64) *tele.ReplyMarkup {
	payload := strconv.FormatInt(buyerID, 10)
	return keyboard.Inline(
		[]keyboard.Btn{{Text: msgApproveButton, Unique: cbApprove, Data: payload}},
		[]keyboard.Btn{{Text: msgRejectButton, Unique: cbReject, Data: payload}},
	)
}

func proofPhoto(tx shop.Transaction) *tele.Photo {
	file := tele.FromURL(tx.ProofURL)
	if tx.ProofFileID != "" {
		file = tele.File{FileID: tx.ProofFileID}
	}
	return &tele.Photo{File: file, Caption: ownerProofCaption(tx)}
}

// OwnerProof forwards the payment proof with approve and reject buttons.
func (n *Notifier) OwnerProof(ctx context.Context, tx shop.Transaction) error {
	return n.send(ctx, "notify.owner_proof", "sendPhoto", n.ownerID,
		proofPhoto(tx), &tele.SendOptions{ReplyMarkup: reviewKeyboard(tx.BuyerID)})
}

// BuyerApproved asks the buyer for a site name.
func (n *Notifier) BuyerApproved(ctx context.Context, tx shop.Transaction) error {
	return n.send(ctx, "notify.buyer_approved", "sendMessage", tx.BuyerID, msgBuyerApproved)
}

// BuyerRejected tells the buyer the proof was refused.
func (n *Notifier) BuyerRejected(ctx context.Context, tx shop.Transaction) error {
	return n.send(ctx, "notify.buyer_rejected", "sendMessage", tx.BuyerID, msgBuyerRejected)
}

// OwnerDeployed reports a finished deployment to the owner.
func (n *Notifier) OwnerDeployed(ctx context.Context, tx shop.Transaction) error {
	return n.send(ctx, "notify.owner_deployed", "sendMessage", n.ownerID, ownerDeployedText(tx))
}

func (n *Notifier) send(ctx context.Context, action, endpoint string, to int64, what any, opts ...any) error {
	if to == 0 {
		return errors.Newf("%s: no recipient", action)
	}
	run := func() error {
		_, err := n.sender.Send(tele.ChatID(to), what, opts...)
		return err
	}
	if n.dispatcher == nil {
		return run()
	}
	err := n.dispatcher.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, tgsender.ErrQueueFull) || errors.Is(err, tgsender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback", slog.String("mode", action), logger.Err(err))
		return run()
	}
	return err
}

var _ shop.Notifier = (*Notifier)(nil)
