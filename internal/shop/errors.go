package shop

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound is returned by stores for a missing record.
	ErrNotFound = errors.New("transaction not found")

	ErrEmptyCatalog     = errors.New("no products available")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrBusy             = errors.New("another purchase is in progress")
	ErrNotAwaitingProof = errors.New("payment proof not expected")
	ErrAlreadyPending   = errors.New("a payment is already waiting for review")
	ErrNotOwner         = errors.New("only the owner can do this")
	ErrNoWaiting        = errors.New("no waiting transaction for buyer")
	ErrNotApproved      = errors.New("payment not approved yet")
	ErrNoPendingPayment = errors.New("no approved payment to deploy")
	ErrDeployInProgress = errors.New("deployment already in progress")
	ErrInvalidName      = errors.New("invalid site name")
	ErrDeployFailed     = errors.New("deployment failed")
	ErrNoTransactions   = errors.New("no transactions")
)

// Silent reports whether err is a no-op condition that should not be
// surfaced to the user.
func Silent(err error) bool {
	return errors.Is(err, ErrNotAwaitingProof) || errors.Is(err, ErrNoWaiting)
}
