// Package shop implements the purchase flow: product selection, payment
// proof, owner review and site deployment. Conversation stages live in a
// state.Manager; decisions are persisted through a Store.
package shop

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/core/telegram/state"
)

// Config holds the identities and settings the machine needs.
type Config struct {
	OwnerID int64
}

// Deps are the collaborators of a Machine. Clock and NewID default to
// time.Now and random UUIDs.
type Deps struct {
	Sessions  state.Manager
	Store     Store
	Catalog   Catalog
	Publisher Publisher
	Proofs    ProofResolver
	Notifier  Notifier

	Clock func() time.Time
	NewID func() string
}

// Machine drives transactions through their stages.
type Machine struct {
	cfg Config
	Deps

	// proofLocks serialises proof submission per buyer.
	proofLocks buyerLocks
}

// NewMachine validates deps and returns a ready Machine.
func NewMachine(cfg Config, deps Deps) (*Machine, error) {
	switch {
	case cfg.OwnerID == 0:
		return nil, errors.New("shop: owner id is required")
	case deps.Sessions == nil, deps.Store == nil, deps.Catalog == nil,
		deps.Publisher == nil, deps.Proofs == nil, deps.Notifier == nil:
		return nil, errors.New("shop: missing dependency")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Machine{cfg: cfg, Deps: deps}, nil
}

// OwnerID returns the configured owner.
func (m *Machine) OwnerID() int64 { return m.cfg.OwnerID }

// IsOwner reports whether userID may review payments.
func (m *Machine) IsOwner(userID int64) bool { return userID == m.cfg.OwnerID }

// Stage returns the buyer's current conversation stage.
func (m *Machine) Stage(buyerID int64) Stage { return m.Sessions.GetState(buyerID) }

// Browse lists the products on offer.
func (m *Machine) Browse(ctx context.Context) ([]string, error) {
	products, err := m.Catalog.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	return products, nil
}

// SelectProduct records the buyer's choice and arms the proof gate. A buyer
// may switch products while the proof is still awaited.
func (m *Machine) SelectProduct(ctx context.Context, buyerID int64, product string) error {
	if !m.selectable(m.Stage(buyerID)) {
		return ErrBusy
	}
	products, err := m.Catalog.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if !slices.Contains(products, product) {
		return errors.Wrapf(ErrUnknownProduct, "%q", product)
	}
	if _, ok := m.Sessions.Transition(buyerID, StageAwaitingProof, StageIdle, StageAwaitingProof); !ok {
		return ErrBusy
	}
	m.Sessions.SetTemp(buyerID, keyProduct, product)

	logger.Info(ctx, "shop", "product.selected",
		slog.Int64("buyer_id", buyerID),
		slog.String("product", product),
	)
	return nil
}

func (m *Machine) selectable(st Stage) bool {
	return st == StageIdle || st == StageAwaitingProof
}

// SelectedProduct returns the product chosen in the current session.
func (m *Machine) SelectedProduct(buyerID int64) (string, bool) {
	return state.TempAs[string](m.Sessions, buyerID, keyProduct)
}

// ConfirmPaid keeps the proof gate armed after the buyer says they paid
// and returns the selected product.
func (m *Machine) ConfirmPaid(_ context.Context, buyerID int64) (string, error) {
	product, ok := m.SelectedProduct(buyerID)
	if m.Stage(buyerID) != StageAwaitingProof || !ok {
		return "", ErrNotAwaitingProof
	}
	return product, nil
}

// SubmitProof records a waiting transaction for the buyer's payment proof
// and asks the owner to review it.
func (m *Machine) SubmitProof(ctx context.Context, buyer Buyer, proof Proof) (*Transaction, error) {
	unlock := m.lockBuyer(buyer.ID)
	defer unlock()

	product, ok := m.SelectedProduct(buyer.ID)
	if m.Stage(buyer.ID) != StageAwaitingProof || !ok {
		return nil, ErrNotAwaitingProof
	}

	existing, err := m.Store.FindWaitingByBuyer(ctx, buyer.ID)
	if err != nil {
		return nil, errors.Wrap(err, "find waiting transaction")
	}
	if existing != nil {
		return nil, errors.Wrapf(ErrAlreadyPending, "tx %s", existing.ID)
	}

	url, err := m.Proofs.ResolveProof(ctx, proof.FileID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve proof")
	}

	now := m.Clock().UTC()
	tx := Transaction{
		ID:          m.NewID(),
		BuyerID:     buyer.ID,
		BuyerName:   buyer.Name,
		Product:     product,
		ProofURL:    url,
		ProofFileID: proof.FileID,
		Status:      StatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.Store.Append(ctx, tx); err != nil {
		return nil, errors.Wrap(err, "append transaction")
	}

	m.Sessions.ClearTemp(buyer.ID, keyProduct)
	m.Sessions.SetTemp(buyer.ID, keyPending, pendingFrom(tx))
	m.Sessions.SetState(buyer.ID, StageProofSubmitted)

	logger.Info(ctx, "shop", "proof.submitted",
		slog.String("tx_id", tx.ID),
		slog.Int64("buyer_id", buyer.ID),
		slog.String("product", product),
	)
	if err := m.Notifier.OwnerProof(ctx, tx); err != nil {
		logger.Warn(ctx, "shop", "notify.owner", slog.String("status", "fail"), slog.String("tx_id", tx.ID), logger.Err(err))
	}
	return &tx, nil
}

func (m *Machine) lockBuyer(buyerID int64) func() {
	return m.proofLocks.lock(buyerID)
}

// Approve marks the buyer's waiting payment approved and invites the buyer
// to choose a site name.
func (m *Machine) Approve(ctx context.Context, actorID, buyerID int64) (*Transaction, error) {
	tx, err := m.decide(ctx, actorID, buyerID, StatusApproved)
	if err != nil {
		return nil, err
	}
	// Rebuilt from the record so an approval after a restart still works.
	m.Sessions.Clear(buyerID)
	m.Sessions.SetTemp(buyerID, keyPending, pendingFrom(*tx))
	m.Sessions.SetState(buyerID, StageNameEntry)

	if err := m.Notifier.BuyerApproved(ctx, *tx); err != nil {
		logger.Warn(ctx, "shop", "notify.buyer", slog.String("status", "fail"), slog.String("tx_id", tx.ID), logger.Err(err))
	}
	return tx, nil
}

// Reject marks the buyer's waiting payment rejected and resets the buyer.
func (m *Machine) Reject(ctx context.Context, actorID, buyerID int64) (*Transaction, error) {
	tx, err := m.decide(ctx, actorID, buyerID, StatusRejected)
	if err != nil {
		return nil, err
	}
	m.Sessions.Clear(buyerID)

	if err := m.Notifier.BuyerRejected(ctx, *tx); err != nil {
		logger.Warn(ctx, "shop", "notify.buyer", slog.String("status", "fail"), slog.String("tx_id", tx.ID), logger.Err(err))
	}
	return tx, nil
}

func (m *Machine) decide(ctx context.Context, actorID, buyerID int64, status Status) (*Transaction, error) {
	if !m.IsOwner(actorID) {
		return nil, ErrNotOwner
	}
	tx, err := m.Store.ResolveWaiting(ctx, buyerID, status, m.Clock().UTC())
	if errors.Is(err, ErrNotFound) {
		logger.Info(ctx, "shop", "review.noop", slog.String("status", "skip"), slog.Int64("buyer_id", buyerID))
		return nil, ErrNoWaiting
	}
	if err != nil {
		return nil, errors.Wrapf(err, "resolve waiting transaction as %s", status)
	}
	logger.Info(ctx, "shop", "review."+string(status),
		slog.String("tx_id", tx.ID),
		slog.Int64("buyer_id", buyerID),
		slog.String("tx_status", string(status)),
	)
	return tx, nil
}

// RequestDeploy publishes the approved product under the site name typed
// by the buyer. On failure the buyer stays in name entry and may retry.
func (m *Machine) RequestDeploy(ctx context.Context, buyerID int64, text string) (*Deployment, error) {
	switch m.Stage(buyerID) {
	case StageNameEntry:
	case StageProofSubmitted:
		return nil, ErrNotApproved
	case StageDeploying:
		return nil, ErrDeployInProgress
	default:
		return nil, ErrNoPendingPayment
	}

	name, err := NormalizeSiteName(text)
	if err != nil {
		return nil, err
	}
	pending, ok := state.TempAs[PendingPayment](m.Sessions, buyerID, keyPending)
	if !ok {
		return nil, ErrNoPendingPayment
	}
	tx, err := m.Store.Get(ctx, pending.TxID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoPendingPayment
	}
	if err != nil {
		return nil, errors.Wrap(err, "load transaction")
	}
	if tx.Status != StatusApproved {
		return nil, ErrNotApproved
	}

	if _, ok := m.Sessions.Transition(buyerID, StageDeploying, StageNameEntry); !ok {
		return nil, ErrDeployInProgress
	}

	start := time.Now()
	url, err := m.Publisher.Publish(ctx, tx.Product, name, fmt.Sprintf("tmp_%d", buyerID))
	if err != nil {
		m.Sessions.Transition(buyerID, StageNameEntry, StageDeploying)
		logger.Error(ctx, "shop", "deploy.failed",
			slog.String("tx_id", tx.ID),
			slog.String("product", tx.Product),
			slog.String("site", name),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		)
		return nil, errors.Mark(errors.Wrapf(err, "publish %s as %s", tx.Product, name), ErrDeployFailed)
	}

	tx.SiteName = name
	tx.DeployURL = url
	tx.UpdatedAt = m.Clock().UTC()
	if err := m.Store.Update(ctx, *tx); err != nil {
		logger.Warn(ctx, "shop", "deploy.record", slog.String("status", "fail"), slog.String("tx_id", tx.ID), logger.Err(err))
	}
	m.Sessions.Clear(buyerID)

	logger.Info(ctx, "shop", "deploy.done",
		slog.String("tx_id", tx.ID),
		slog.String("product", tx.Product),
		slog.String("site", name),
		slog.String("url", url),
		slog.Duration("duration", logger.Took(start)),
	)
	if err := m.Notifier.OwnerDeployed(ctx, *tx); err != nil {
		logger.Warn(ctx, "shop", "notify.owner", slog.String("status", "fail"), slog.String("tx_id", tx.ID), logger.Err(err))
	}
	return &Deployment{TxID: tx.ID, Product: tx.Product, SiteName: name, URL: url}, nil
}

// Status returns the buyer's stage and their transactions.
func (m *Machine) Status(ctx context.Context, buyerID int64) (*StatusReport, error) {
	txs, err := m.Store.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, errors.Wrap(err, "list buyer transactions")
	}
	report := &StatusReport{Stage: m.Stage(buyerID), Transactions: txs}
	report.Product, _ = m.SelectedProduct(buyerID)
	if len(txs) == 0 && report.Stage == StageIdle {
		return nil, ErrNoTransactions
	}
	return report, nil
}

// History returns every transaction; owner only.
func (m *Machine) History(ctx context.Context, actorID int64) ([]Transaction, error) {
	if !m.IsOwner(actorID) {
		return nil, ErrNotOwner
	}
	txs, err := m.Store.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	return txs, nil
}

// Cancel abandons a selection whose proof has not been sent yet, or an
// approved purchase the buyer no longer wants to deploy. Between proof and
// decision only the owner can end the purchase.
func (m *Machine) Cancel(ctx context.Context, buyerID int64) error {
	from := m.Stage(buyerID)
	switch from {
	case StageIdle:
		return nil
	case StageAwaitingProof, StageNameEntry:
		if _, ok := m.Sessions.Transition(buyerID, StageIdle, from); !ok {
			return ErrBusy
		}
		m.Sessions.Clear(buyerID)
		logger.Info(ctx, "shop", "purchase.cancelled",
			slog.Int64("buyer_id", buyerID),
			slog.String("stage", string(from)),
		)
		return nil
	}
	return ErrBusy
}

// PendingPayment returns the session snapshot of the buyer's submitted
// payment.
func (m *Machine) PendingPayment(buyerID int64) (PendingPayment, bool) {
	return state.TempAs[PendingPayment](m.Sessions, buyerID, keyPending)
}
