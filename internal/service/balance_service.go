package service

import (
	"context"
	"fmt"
	"time"

	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"
	"multicurrency-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BalanceServiceImpl implements ports.BalanceService.
type BalanceServiceImpl struct {
	balanceRepo ports.BalanceRepository
	currencySvc ports.CurrencyService
	transferer  ports.Transferer
	transactor  ports.DBTransactor
	custodyID   uuid.UUID
	log         zerolog.Logger
}

// NewBalanceService creates a new BalanceServiceImpl. custodyID is the
// account debited when native-asset withdrawals are paid out.
func NewBalanceService(
	balanceRepo ports.BalanceRepository,
	currencySvc ports.CurrencyService,
	transferer ports.Transferer,
	transactor ports.DBTransactor,
	custodyID uuid.UUID,
	log zerolog.Logger,
) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		balanceRepo: balanceRepo,
		currencySvc: currencySvc,
		transferer:  transferer,
		transactor:  transactor,
		custodyID:   custodyID,
		log:         log,
	}
}

// Get returns the stored balance for (merchant, currency), or 0 when no row
// exists. It never fails on absence.
func (s *BalanceServiceImpl) Get(ctx context.Context, merchantID uuid.UUID, currency string) (int64, error) {
	balance, err := s.balanceRepo.Get(ctx, merchantID, currency)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get balance: %w", err))
	}
	if balance == nil {
		return 0, nil
	}
	return balance.Amount, nil
}

// Withdraw debits the caller's balance. The guard check and the decrement
// run against the same row-locked snapshot, so the stored balance can never
// go negative. For the native asset the payout transfer must succeed before
// anything is debited.
func (s *BalanceServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, req.CallerID, req.Currency)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock balance: %w", err))
	}

	var current int64
	if balance != nil {
		current = balance.Amount
	}
	if req.Amount > current {
		return 0, apperror.ErrInsufficientBalance()
	}

	currency, err := s.currencySvc.Get(ctx, req.Currency)
	if err != nil {
		return 0, err
	}
	if currency != nil && currency.IsNative() {
		if err := s.transferer.Transfer(ctx, req.Amount, s.custodyID, req.CallerID); err != nil {
			return 0, apperror.ErrTransferFailed(err)
		}
	}
	// External currencies pay out out-of-band; the debit is immediate.

	remaining := current - req.Amount
	updated := &domain.Balance{
		MerchantID: req.CallerID,
		Currency:   req.Currency,
		Amount:     remaining,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.balanceRepo.Upsert(ctx, dbTx, updated); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("debit balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("merchant_id", req.CallerID.String()).
		Str("currency", req.Currency).
		Int64("amount", req.Amount).
		Int64("remaining", remaining).
		Msg("withdrawal processed")

	return remaining, nil
}
