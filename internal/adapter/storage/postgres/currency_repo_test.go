package postgres

import (
	"context"
	"testing"
	"time"

	"multicurrency-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCurrency(code string, kind domain.CurrencyKind) *domain.Currency {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Currency{
		Code:          code,
		Kind:          kind,
		Enabled:       true,
		RateMicroUSD:  1_000_000,
		DecimalPlaces: 2,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func currencyColumns() []string {
	return []string{"code", "kind", "enabled", "rate_micro_usd", "decimal_places", "created_at", "updated_at"}
}

func currencyRow(c *domain.Currency) *pgxmock.Rows {
	return pgxmock.NewRows(currencyColumns()).AddRow(
		c.Code, c.Kind, c.Enabled, c.RateMicroUSD,
		c.DecimalPlaces, c.CreatedAt, c.UpdatedAt,
	)
}

func TestCurrencyRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	c := newTestCurrency("USD", domain.CurrencyKindExternal)

	mock.ExpectExec("INSERT INTO currencies").
		WithArgs(c.Code, string(c.Kind), c.Enabled, c.RateMicroUSD,
			c.DecimalPlaces, c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Upsert(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_EnsureExists_NoOpOnConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	c := newTestCurrency("EUR", domain.CurrencyKindExternal)

	mock.ExpectExec("INSERT INTO currencies").
		WithArgs(c.Code, string(c.Kind), c.Enabled, c.RateMicroUSD,
			c.DecimalPlaces, c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = repo.EnsureExists(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_GetByCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	c := newTestCurrency("NATIVE", domain.CurrencyKindNative)

	mock.ExpectQuery("SELECT .+ FROM currencies WHERE code").
		WithArgs("NATIVE").
		WillReturnRows(currencyRow(c))

	result, err := repo.GetByCode(context.Background(), "NATIVE")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "NATIVE", result.Code)
	assert.Equal(t, domain.CurrencyKindNative, result.Kind)
	assert.Equal(t, int64(1_000_000), result.RateMicroUSD)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_GetByCode_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM currencies WHERE code").
		WithArgs("XYZ").
		WillReturnRows(pgxmock.NewRows(currencyColumns()))

	result, err := repo.GetByCode(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	usd := newTestCurrency("USD", domain.CurrencyKindExternal)
	native := newTestCurrency("NATIVE", domain.CurrencyKindNative)

	rows := pgxmock.NewRows(currencyColumns()).
		AddRow(native.Code, native.Kind, native.Enabled, native.RateMicroUSD,
			native.DecimalPlaces, native.CreatedAt, native.UpdatedAt).
		AddRow(usd.Code, usd.Kind, usd.Enabled, usd.RateMicroUSD,
			usd.DecimalPlaces, usd.CreatedAt, usd.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM currencies ORDER BY code").
		WillReturnRows(rows)

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "NATIVE", result[0].Code)
	assert.Equal(t, "USD", result[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
