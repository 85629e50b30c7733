package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Balance is a merchant's accumulated balance in one currency, keyed by
// (merchant, currency). An absent row is semantically a zero balance.
// The stored amount is never negative.
type Balance struct {
	MerchantID uuid.UUID `json:"merchant_id"`
	Currency   string    `json:"currency"`
	Amount     int64     `json:"amount"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SafeAdd adds two non-negative amounts, reporting false on int64 overflow
// instead of wrapping.
func SafeAdd(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
