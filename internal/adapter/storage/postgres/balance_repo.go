package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"multicurrency-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// EnsureRow inserts a zero balance row for (merchant, currency) when none
// exists yet. FOR UPDATE locks nothing on an absent row, so the credit path
// materializes the row first; a concurrent insert of the same key blocks on
// the unique index until the other transaction finishes, which serializes
// first credits instead of losing one.
func (r *BalanceRepo) EnsureRow(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency string) error {
	query := `INSERT INTO balances (merchant_id, currency, amount, updated_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (merchant_id, currency) DO NOTHING`

	_, err := tx.Exec(ctx, query, merchantID, currency, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ensure balance row: %w", err)
	}
	return nil
}

// Get fetches a balance row (non-locking read). Returns nil, nil when the
// merchant has never held this currency.
func (r *BalanceRepo) Get(ctx context.Context, merchantID uuid.UUID, currency string) (*domain.Balance, error) {
	query := `SELECT merchant_id, currency, amount, updated_at
		FROM balances WHERE merchant_id = $1 AND currency = $2`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, merchantID, currency).Scan(
		&b.MerchantID, &b.Currency, &b.Amount, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate fetches a balance row with pessimistic locking.
// This MUST be called within a transaction.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency string) (*domain.Balance, error) {
	query := `SELECT merchant_id, currency, amount, updated_at
		FROM balances WHERE merchant_id = $1 AND currency = $2 FOR UPDATE`

	b := &domain.Balance{}
	err := tx.QueryRow(ctx, query, merchantID, currency).Scan(
		&b.MerchantID, &b.Currency, &b.Amount, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Upsert sets the stored amount for (merchant, currency) within a database
// transaction. The absolute write is only safe when the caller holds the row
// lock from GetForUpdate (after EnsureRow on the credit path).
func (r *BalanceRepo) Upsert(ctx context.Context, tx pgx.Tx, b *domain.Balance) error {
	query := `INSERT INTO balances (merchant_id, currency, amount, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (merchant_id, currency) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = EXCLUDED.updated_at`

	_, err := tx.Exec(ctx, query, b.MerchantID, b.Currency, b.Amount, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}
