package ports

import (
	"context"
	"time"

	"multicurrency-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// Transferer is the host-supplied atomic value-transfer primitive for the
// native settlement asset. A nil error means the full amount moved; any
// error means nothing moved. There are no partial effects.
type Transferer interface {
	Transfer(ctx context.Context, amount int64, from, to uuid.UUID) error
}

// TokenService handles JWT token operations. Tokens are the caller-identity
// primitive: the host issues them, the ledger only needs the account they name.
type TokenService interface {
	Generate(accountID uuid.UUID, admin bool) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Admin     bool
}

// CurrencyCache is a read-through cache in front of the currency registry.
// All methods degrade gracefully; a cache failure never fails the operation.
type CurrencyCache interface {
	Get(ctx context.Context, code string) (*domain.Currency, error) // nil, nil on miss
	Set(ctx context.Context, currency *domain.Currency, ttl time.Duration) error
	Invalidate(ctx context.Context, code string) error
}

// --- Service Ports (Business Logic) ---

// CurrencyService owns the currency registry and conversion math.
type CurrencyService interface {
	// Register inserts or overwrites a registry entry. Admin-only.
	Register(ctx context.Context, req RegisterCurrencyRequest) (*domain.Currency, error)
	// Get is a pure lookup; returns nil, nil when the code is unknown.
	Get(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
	// Convert computes floor(amount * rate(to) / rate(from)).
	Convert(ctx context.Context, amount int64, fromCode, toCode string) (int64, error)
	// Seed idempotently registers the well-known bootstrap currencies.
	Seed(ctx context.Context) error
}

// RegisterCurrencyRequest holds validated input for currency registration.
type RegisterCurrencyRequest struct {
	CallerID      uuid.UUID
	Code          string
	RateMicroUSD  int64
	DecimalPlaces int32
}

// PaymentService owns the payment ledger and its settlement state machine.
type PaymentService interface {
	Create(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error)
	// Settle performs the one-shot PENDING -> COMPLETED transition.
	Settle(ctx context.Context, req SettlePaymentRequest) (*domain.Payment, error)
	// Get is a pure lookup; returns nil, nil when the id is unknown.
	Get(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context, params PaymentListParams) ([]domain.Payment, int64, error)
}

// CreatePaymentRequest holds validated input for payment creation.
// The caller becomes the payment's customer.
type CreatePaymentRequest struct {
	CallerID   uuid.UUID
	MerchantID uuid.UUID
	Amount     int64
	Currency   string
	ClientIP   string
}

// SettlePaymentRequest holds validated input for settlement.
type SettlePaymentRequest struct {
	CallerID  uuid.UUID
	PaymentID string
	ClientIP  string
}

// BalanceService owns the merchant balance ledger.
type BalanceService interface {
	// Get returns the stored balance, or 0 for an absent row. Never fails
	// on absence.
	Get(ctx context.Context, merchantID uuid.UUID, currency string) (int64, error)
	// Withdraw debits the caller's balance, returning the remaining amount.
	Withdraw(ctx context.Context, req WithdrawRequest) (int64, error)
}

// WithdrawRequest holds validated input for a withdrawal.
type WithdrawRequest struct {
	CallerID uuid.UUID
	Currency string
	Amount   int64
	ClientIP string
}

// AuditService records audited actions best-effort.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
