package postgres

import (
	"context"
	"testing"
	"time"

	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(seq int64) *domain.Payment {
	return &domain.Payment{
		ID:         domain.PaymentID(seq),
		MerchantID: uuid.New(),
		CustomerID: uuid.New(),
		Amount:     1_000_000,
		Currency:   "USD",
		Status:     domain.PaymentStatusPending,
		Sequence:   seq,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func paymentColumns() []string {
	return []string{"id", "merchant_id", "customer_id", "amount", "currency", "status", "sequence", "settlement_ref", "created_at", "settled_at"}
}

func paymentRow(p *domain.Payment) *pgxmock.Rows {
	return pgxmock.NewRows(paymentColumns()).AddRow(
		p.ID, p.MerchantID, p.CustomerID, p.Amount, p.Currency,
		p.Status, p.Sequence, p.SettlementRef, p.CreatedAt, p.SettledAt,
	)
}

func TestPaymentRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(0)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(p.ID, p.MerchantID, p.CustomerID, p.Amount, p.Currency,
			p.Status, p.Sequence, p.SettlementRef, p.CreatedAt, p.SettledAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(4)

	mock.ExpectQuery("SELECT .+ FROM payments WHERE id").
		WithArgs(p.ID).
		WillReturnRows(paymentRow(p))

	result, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "4", result.ID)
	assert.Equal(t, int64(4), result.Sequence)
	assert.Equal(t, domain.PaymentStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM payments WHERE id").
		WithArgs("999").
		WillReturnRows(pgxmock.NewRows(paymentColumns()))

	result, err := repo.GetByID(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(1)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM payments WHERE id .+ FOR UPDATE").
		WithArgs(p.ID).
		WillReturnRows(paymentRow(p))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), dbTx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_MarkCompleted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	ref := int64(2)
	settledAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentStatusCompleted, &ref, settledAt, "2", domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkCompleted(context.Background(), dbTx, "2", &ref, settledAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_MarkCompleted_NotPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	settledAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentStatusCompleted, pgxmock.AnyArg(), settledAt, "7", domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkCompleted(context.Background(), dbTx, "7", nil, settledAt)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_List_FiltersByMerchant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(3)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(p.MerchantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM payments WHERE merchant_id").
		WithArgs(p.MerchantID, 20, 0).
		WillReturnRows(paymentRow(p))

	result, total, err := repo.List(context.Background(), ports.PaymentListParams{
		MerchantID: &p.MerchantID,
		Page:       1,
		PageSize:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, result, 1)
	assert.Equal(t, p.ID, result[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
