package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SequenceRepo implements ports.SequenceRepository on a single-row counter
// table. The row update takes a lock, so concurrent payment creations
// serialize here and each one sees a distinct value.
type SequenceRepo struct {
	pool Pool
}

// NewSequenceRepo creates a new SequenceRepo.
func NewSequenceRepo(pool Pool) *SequenceRepo {
	return &SequenceRepo{pool: pool}
}

// EnsureInitialized creates the single counter row at 0 on a fresh database.
// Idempotent; called once at startup before the first payment.
func (r *SequenceRepo) EnsureInitialized(ctx context.Context) error {
	query := `INSERT INTO payment_counter (next_value)
		SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM payment_counter)`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("initialize payment counter: %w", err)
	}
	return nil
}

// Next returns the current counter value and advances it by one.
// This MUST be called within the same transaction as the insert that
// consumes the value; a rolled-back transaction releases the value back.
func (r *SequenceRepo) Next(ctx context.Context, tx pgx.Tx) (int64, error) {
	query := `UPDATE payment_counter SET next_value = next_value + 1 RETURNING next_value - 1`

	var seq int64
	if err := tx.QueryRow(ctx, query).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advance payment counter: %w", err)
	}
	return seq, nil
}
