package shop

import (
	"context"
	"time"
)

// Store persists transactions in insertion order.
type Store interface {
	ListAll(ctx context.Context) ([]Transaction, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]Transaction, error)
	Append(ctx context.Context, tx Transaction) error
	// FindWaitingByBuyer returns the first waiting record, or nil when none.
	FindWaitingByBuyer(ctx context.Context, buyerID int64) (*Transaction, error)
	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*Transaction, error)
	// Update replaces the record with tx.ID; ErrNotFound if absent.
	Update(ctx context.Context, tx Transaction) error
	// ResolveWaiting atomically moves the buyer's first waiting record to
	// status and returns it; ErrNotFound when nothing is waiting.
	ResolveWaiting(ctx context.Context, buyerID int64, status Status, at time.Time) (*Transaction, error)
}

// Catalog lists purchasable templates.
type Catalog interface {
	List(ctx context.Context) ([]string, error)
}

// Publisher packages a template and deploys it under target. scope keeps
// concurrent work directories apart.
type Publisher interface {
	Publish(ctx context.Context, template, target, scope string) (string, error)
}

// ProofResolver turns a chat file id into a downloadable URL.
type ProofResolver interface {
	ResolveProof(ctx context.Context, fileID string) (string, error)
}

// Notifier delivers out-of-band messages to the owner and buyers.
type Notifier interface {
	OwnerProof(ctx context.Context, tx Transaction) error
	BuyerApproved(ctx context.Context, tx Transaction) error
	BuyerRejected(ctx context.Context, tx Transaction) error
	OwnerDeployed(ctx context.Context, tx Transaction) error
}
