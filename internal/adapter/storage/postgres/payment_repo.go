package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a new payment within a database transaction.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (id, merchant_id, customer_id, amount, currency, status, sequence, settlement_ref, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.MerchantID, p.CustomerID, p.Amount, p.Currency,
		p.Status, p.Sequence, p.SettlementRef, p.CreatedAt, p.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID fetches a payment by its identifier (without locking).
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT id, merchant_id, customer_id, amount, currency, status, sequence, settlement_ref, created_at, settled_at
		FROM payments WHERE id = $1`

	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a payment with pessimistic locking.
// This MUST be called within a transaction.
func (r *PaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Payment, error) {
	query := `SELECT id, merchant_id, customer_id, amount, currency, status, sequence, settlement_ref, created_at, settled_at
		FROM payments WHERE id = $1 FOR UPDATE`

	return scanPayment(tx.QueryRow(ctx, query, id))
}

// MarkCompleted transitions a payment to COMPLETED within a database
// transaction. The status guard makes the transition one-shot even if the
// row lock was somehow bypassed.
func (r *PaymentRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id string, settlementRef *int64, settledAt time.Time) error {
	query := `UPDATE payments SET status = $1, settlement_ref = $2, settled_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := tx.Exec(ctx, query,
		domain.PaymentStatusCompleted, settlementRef, settledAt,
		id, domain.PaymentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("complete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not pending: %s", id)
	}
	return nil
}

// List fetches payments with filtering and pagination.
func (r *PaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.MerchantID != nil {
		conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
		args = append(args, *params.MerchantID)
		argIdx++
	}
	if params.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argIdx))
		args = append(args, *params.CustomerID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Currency != nil {
		conditions = append(conditions, fmt.Sprintf("currency = $%d", argIdx))
		args = append(args, *params.Currency)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payments %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, merchant_id, customer_id, amount, currency, status, sequence, settlement_ref, created_at, settled_at
		FROM payments %s ORDER BY sequence DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p := domain.Payment{}
		err := rows.Scan(
			&p.ID, &p.MerchantID, &p.CustomerID, &p.Amount, &p.Currency,
			&p.Status, &p.Sequence, &p.SettlementRef, &p.CreatedAt, &p.SettledAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, total, nil
}

// scanPayment is a helper to scan a single row into a Payment.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.MerchantID, &p.CustomerID, &p.Amount, &p.Currency,
		&p.Status, &p.Sequence, &p.SettlementRef, &p.CreatedAt, &p.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}
