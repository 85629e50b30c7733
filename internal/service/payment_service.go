package service

import (
	"context"
	"fmt"
	"time"

	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"
	"multicurrency-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	paymentRepo ports.PaymentRepository
	seqRepo     ports.SequenceRepository
	balanceRepo ports.BalanceRepository
	currencySvc ports.CurrencyService
	transferer  ports.Transferer
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	paymentRepo ports.PaymentRepository,
	seqRepo ports.SequenceRepository,
	balanceRepo ports.BalanceRepository,
	currencySvc ports.CurrencyService,
	transferer ports.Transferer,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		seqRepo:     seqRepo,
		balanceRepo: balanceRepo,
		currencySvc: currencySvc,
		transferer:  transferer,
		transactor:  transactor,
		log:         log,
	}
}

// Create records a new pending payment. The caller becomes the customer.
// Identifiers are assigned from the global sequence inside the same
// transaction as the insert, so they are strictly sequential from "0" and
// never reused.
func (s *PaymentServiceImpl) Create(ctx context.Context, req ports.CreatePaymentRequest) (*domain.Payment, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	currency, err := s.currencySvc.Get(ctx, req.Currency)
	if err != nil {
		return nil, err
	}
	if currency == nil || !currency.Enabled {
		return nil, apperror.ErrCurrencyNotSupported()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	seq, err := s.seqRepo.Next(ctx, dbTx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("next payment sequence: %w", err))
	}

	payment := &domain.Payment{
		ID:         domain.PaymentID(seq),
		MerchantID: req.MerchantID,
		CustomerID: req.CallerID,
		Amount:     req.Amount,
		Currency:   currency.Code,
		Status:     domain.PaymentStatusPending,
		Sequence:   seq,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.paymentRepo.Create(ctx, dbTx, payment); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payment_id", payment.ID).
		Str("merchant_id", payment.MerchantID.String()).
		Str("currency", payment.Currency).
		Int64("amount", payment.Amount).
		Msg("payment created")

	return payment, nil
}

// Settle performs the one-shot PENDING -> COMPLETED transition under a row
// lock. For the native asset it first invokes the external transfer
// primitive; a primitive failure aborts with no mutation. The merchant
// balance is credited exactly once per payment.
func (s *PaymentServiceImpl) Settle(ctx context.Context, req ports.SettlePaymentRequest) (*domain.Payment, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	payment, err := s.paymentRepo.GetByIDForUpdate(ctx, dbTx, req.PaymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrPaymentNotFound()
	}
	if payment.Status != domain.PaymentStatusPending {
		return nil, apperror.ErrPaymentAlreadyProcessed()
	}
	if req.CallerID != payment.CustomerID {
		return nil, apperror.ErrNotAuthorized()
	}

	// Currencies are never deleted, so the entry the payment was validated
	// against must still exist.
	currency, err := s.currencySvc.Get(ctx, payment.Currency)
	if err != nil {
		return nil, err
	}
	if currency == nil {
		return nil, apperror.InternalError(fmt.Errorf("currency %s missing from registry", payment.Currency))
	}

	var settlementRef *int64
	if currency.IsNative() {
		if err := s.transferer.Transfer(ctx, payment.Amount, payment.CustomerID, payment.MerchantID); err != nil {
			return nil, apperror.ErrTransferFailed(err)
		}
		ref := payment.Sequence
		settlementRef = &ref
	}
	// External currencies settle out-of-band: no transfer is invoked and
	// settlementRef stays unset.

	if err := s.creditBalance(ctx, dbTx, payment); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.paymentRepo.MarkCompleted(ctx, dbTx, payment.ID, settlementRef, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("complete payment: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	payment.Status = domain.PaymentStatusCompleted
	payment.SettlementRef = settlementRef
	payment.SettledAt = &now

	s.log.Info().
		Str("payment_id", payment.ID).
		Str("currency", payment.Currency).
		Int64("amount", payment.Amount).
		Bool("native", currency.IsNative()).
		Msg("payment settled")

	return payment, nil
}

// creditBalance adds the payment amount to the merchant's balance row under
// a row lock. The row is materialized first: FOR UPDATE on an absent row
// locks nothing, and two first credits that both read "no row" would
// overwrite each other's amount.
func (s *PaymentServiceImpl) creditBalance(ctx context.Context, dbTx pgx.Tx, payment *domain.Payment) error {
	if err := s.balanceRepo.EnsureRow(ctx, dbTx, payment.MerchantID, payment.Currency); err != nil {
		return apperror.InternalError(fmt.Errorf("ensure balance row: %w", err))
	}

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, payment.MerchantID, payment.Currency)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock balance: %w", err))
	}

	var current int64
	if balance != nil {
		current = balance.Amount
	}

	next, ok := domain.SafeAdd(current, payment.Amount)
	if !ok {
		return apperror.ErrAmountOverflow()
	}

	updated := &domain.Balance{
		MerchantID: payment.MerchantID,
		Currency:   payment.Currency,
		Amount:     next,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.balanceRepo.Upsert(ctx, dbTx, updated); err != nil {
		return apperror.InternalError(fmt.Errorf("credit balance: %w", err))
	}
	return nil
}

// Get looks up a payment by identifier. Returns nil, nil when absent.
func (s *PaymentServiceImpl) Get(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payment: %w", err))
	}
	return payment, nil
}

// List returns payments matching the filter with pagination.
func (s *PaymentServiceImpl) List(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	payments, total, err := s.paymentRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list payments: %w", err))
	}
	return payments, total, nil
}
