package shop

import "time"

// Status is the review state of a Transaction.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no owner decision is pending.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Transaction is one purchase: created as waiting when the buyer submits a
// payment proof and decided once by the owner. Records are never deleted.
type Transaction struct {
	ID          string    `json:"id"`
	BuyerID     int64     `json:"buyerId"`
	BuyerName   string    `json:"buyerName"`
	Product     string    `json:"product"`
	ProofURL    string    `json:"proofUrl"`
	ProofFileID string    `json:"proofFileId,omitempty"`
	Status      Status    `json:"status"`
	SiteName    string    `json:"siteName,omitempty"`
	DeployURL   string    `json:"deployUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Deployed reports whether a site was published for the transaction.
func (t Transaction) Deployed() bool {
	return t.DeployURL != ""
}

// Buyer identifies who is talking to the bot.
type Buyer struct {
	ID   int64
	Name string
}

// Proof references the payment screenshot. FileID is the largest photo
// size Telegram offered.
type Proof struct {
	FileID string
}

// Deployment is the result of a successful publish.
type Deployment struct {
	TxID     string
	Product  string
	SiteName string
	URL      string
}

// StatusReport is what a buyer sees on /status.
type StatusReport struct {
	Stage        Stage
	Product      string
	Transactions []Transaction
}
