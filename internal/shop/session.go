package shop

import "github.com/m3rciful/sitebot/core/telegram/state"

// Stage is the conversation step of a buyer.
type Stage = state.State

const (
	StageIdle           Stage = state.StateIdle
	StageAwaitingProof  Stage = "awaiting_proof"
	StageProofSubmitted Stage = "proof_submitted"
	StageNameEntry      Stage = "name_entry"
	StageDeploying      Stage = "deploying"
)

const (
	keyProduct = "product"
	keyPending = "pending"
)

// PendingPayment is the session copy of a submitted transaction.
type PendingPayment struct {
	TxID      string
	BuyerID   int64
	BuyerName string
	Product   string
	ProofURL  string
}

func pendingFrom(tx Transaction) PendingPayment {
	return PendingPayment{
		TxID:      tx.ID,
		BuyerID:   tx.BuyerID,
		BuyerName: tx.BuyerName,
		Product:   tx.Product,
		ProofURL:  tx.ProofURL,
	}
}
