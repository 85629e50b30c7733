package ports

import (
	"context"
	"time"

	"multicurrency-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CurrencyRepository defines persistence operations for the currency registry.
type CurrencyRepository interface {
	// Upsert inserts or overwrites the entry keyed by Code.
	Upsert(ctx context.Context, currency *domain.Currency) error
	// EnsureExists inserts the entry only if the code is not yet registered.
	// Used by the idempotent bootstrap seed.
	EnsureExists(ctx context.Context, currency *domain.Currency) error
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
}

// PaymentRepository defines persistence operations for payment records.
// Methods accepting pgx.Tx run inside transaction blocks for pessimistic locking.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Payment, error)
	// MarkCompleted transitions a payment to COMPLETED exactly once.
	MarkCompleted(ctx context.Context, tx pgx.Tx, id string, settlementRef *int64, settledAt time.Time) error
	List(ctx context.Context, params PaymentListParams) ([]domain.Payment, int64, error)
}

// PaymentListParams holds filter + pagination for listing payments.
type PaymentListParams struct {
	MerchantID *uuid.UUID
	CustomerID *uuid.UUID
	Status     *domain.PaymentStatus
	Currency   *string
	Page       int
	PageSize   int
}

// SequenceRepository hands out the process-wide payment sequence.
// Next must be called inside the same transaction as the payment insert so
// identifiers are strictly sequential and never reused.
type SequenceRepository interface {
	// EnsureInitialized creates the counter row at 0 if it does not exist.
	// Must run before the first Next on a fresh database.
	EnsureInitialized(ctx context.Context) error
	// Next returns the current counter value N and advances it to N+1.
	Next(ctx context.Context, tx pgx.Tx) (int64, error)
}

// BalanceRepository defines persistence for per-(merchant, currency) balances.
// An absent row reads as a zero balance.
type BalanceRepository interface {
	// EnsureRow inserts a zero row for (merchant, currency) if none exists.
	// A FOR UPDATE read has nothing to lock on an absent row, so the credit
	// path must call this before GetForUpdate; concurrent first credits
	// serialize on the unique index instead of both reading zero.
	EnsureRow(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency string) error
	Get(ctx context.Context, merchantID uuid.UUID, currency string) (*domain.Balance, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency string) (*domain.Balance, error)
	// Upsert sets the stored amount for (merchant, currency).
	Upsert(ctx context.Context, tx pgx.Tx, balance *domain.Balance) error
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
