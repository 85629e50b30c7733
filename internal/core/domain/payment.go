package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a payment. The only legal
// transition is PENDING -> COMPLETED; it happens at most once.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// Payment is a ledger record of a single payment from a customer to a
// merchant. Records are never deleted and never revert to PENDING.
type Payment struct {
	ID            string        `json:"id"` // decimal string of Sequence
	MerchantID    uuid.UUID     `json:"merchant_id"`
	CustomerID    uuid.UUID     `json:"customer_id"`
	Amount        int64         `json:"amount"` // smallest unit of Currency, > 0
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	Sequence      int64         `json:"sequence"`
	SettlementRef *int64        `json:"settlement_ref,omitempty"` // set only on native-asset completion
	CreatedAt     time.Time     `json:"created_at"`
	SettledAt     *time.Time    `json:"settled_at,omitempty"`
}

// IsSettled returns true once the payment has been processed.
func (p *Payment) IsSettled() bool {
	return p.Status == PaymentStatusCompleted
}

// PaymentID converts a sequence number into the external payment identifier.
func PaymentID(sequence int64) string {
	return strconv.FormatInt(sequence, 10)
}
