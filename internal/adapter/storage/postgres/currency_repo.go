package postgres

import (
	"context"
	"errors"
	"fmt"

	"multicurrency-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CurrencyRepo implements ports.CurrencyRepository.
type CurrencyRepo struct {
	pool Pool
}

// NewCurrencyRepo creates a new CurrencyRepo.
func NewCurrencyRepo(pool Pool) *CurrencyRepo {
	return &CurrencyRepo{pool: pool}
}

// Upsert inserts or overwrites the registry entry keyed by code.
// Re-registering an existing code replaces its rate and kind.
func (r *CurrencyRepo) Upsert(ctx context.Context, c *domain.Currency) error {
	query := `INSERT INTO currencies (code, kind, enabled, rate_micro_usd, decimal_places, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET
			kind = EXCLUDED.kind,
			enabled = EXCLUDED.enabled,
			rate_micro_usd = EXCLUDED.rate_micro_usd,
			decimal_places = EXCLUDED.decimal_places,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		c.Code, string(c.Kind), c.Enabled, c.RateMicroUSD,
		c.DecimalPlaces, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert currency: %w", err)
	}
	return nil
}

// EnsureExists inserts the entry only when the code is not yet registered.
func (r *CurrencyRepo) EnsureExists(ctx context.Context, c *domain.Currency) error {
	query := `INSERT INTO currencies (code, kind, enabled, rate_micro_usd, decimal_places, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		c.Code, string(c.Kind), c.Enabled, c.RateMicroUSD,
		c.DecimalPlaces, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ensure currency exists: %w", err)
	}
	return nil
}

// GetByCode fetches a currency by its code. Returns nil, nil when absent.
func (r *CurrencyRepo) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `SELECT code, kind, enabled, rate_micro_usd, decimal_places, created_at, updated_at
		FROM currencies WHERE code = $1`

	c := &domain.Currency{}
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.Code, &c.Kind, &c.Enabled, &c.RateMicroUSD,
		&c.DecimalPlaces, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency by code: %w", err)
	}
	return c, nil
}

// List fetches all registered currencies ordered by code.
func (r *CurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT code, kind, enabled, rate_micro_usd, decimal_places, created_at, updated_at
		FROM currencies ORDER BY code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		c := domain.Currency{}
		err := rows.Scan(
			&c.Code, &c.Kind, &c.Enabled, &c.RateMicroUSD,
			&c.DecimalPlaces, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan currency row: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate currency rows: %w", err)
	}
	return currencies, nil
}
