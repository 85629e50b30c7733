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
	"github.com/shopspring/decimal"
)

const currencyCacheTTL = 5 * time.Minute

// CurrencyServiceImpl implements ports.CurrencyService.
type CurrencyServiceImpl struct {
	repo       ports.CurrencyRepository
	cache      ports.CurrencyCache // nil = caching disabled
	adminID    uuid.UUID
	nativeCode string
	log        zerolog.Logger
}

// NewCurrencyService creates a new CurrencyServiceImpl. adminID is the only
// identity allowed to register or update currencies.
func NewCurrencyService(
	repo ports.CurrencyRepository,
	cache ports.CurrencyCache,
	adminID uuid.UUID,
	nativeCode string,
	log zerolog.Logger,
) *CurrencyServiceImpl {
	return &CurrencyServiceImpl{
		repo:       repo,
		cache:      cache,
		adminID:    adminID,
		nativeCode: nativeCode,
		log:        log,
	}
}

// Register inserts or overwrites a registry entry with enabled = true.
// There is no removal or disable path.
func (s *CurrencyServiceImpl) Register(ctx context.Context, req ports.RegisterCurrencyRequest) (*domain.Currency, error) {
	if req.CallerID != s.adminID {
		return nil, apperror.ErrNotAuthorized()
	}
	if req.RateMicroUSD <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !domain.ValidCurrencyCode(req.Code) {
		return nil, apperror.Validation("currency code must be 2-8 upper-case letters")
	}
	if req.DecimalPlaces < 0 {
		return nil, apperror.Validation("decimal places must not be negative")
	}

	now := time.Now().UTC()
	currency := &domain.Currency{
		Code:          req.Code,
		Kind:          domain.ResolveKind(req.Code, s.nativeCode),
		Enabled:       true,
		RateMicroUSD:  req.RateMicroUSD,
		DecimalPlaces: req.DecimalPlaces,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Upsert(ctx, currency); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert currency: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, currency.Code); err != nil {
			s.log.Warn().Err(err).Str("code", currency.Code).Msg("failed to invalidate currency cache")
		}
	}

	s.log.Info().
		Str("code", currency.Code).
		Str("kind", string(currency.Kind)).
		Int64("rate_micro_usd", currency.RateMicroUSD).
		Msg("currency registered")

	return currency, nil
}

// Get looks up a registry entry by code. Returns nil, nil when absent.
func (s *CurrencyServiceImpl) Get(ctx context.Context, code string) (*domain.Currency, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, code)
		if err != nil {
			s.log.Warn().Err(err).Str("code", code).Msg("currency cache read failed, falling through to DB")
		}
		if cached != nil {
			return cached, nil
		}
	}

	currency, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get currency: %w", err))
	}
	if currency == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, currency, currencyCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("code", code).Msg("failed to cache currency")
		}
	}
	return currency, nil
}

// List returns all registry entries.
func (s *CurrencyServiceImpl) List(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list currencies: %w", err))
	}
	return currencies, nil
}

// Convert computes floor(amount * rate(to) / rate(from)) with an exact
// arbitrary-precision intermediate, so large amounts cannot overflow the
// product. Both codes must exist in the registry; the enabled flag is
// deliberately ignored here.
func (s *CurrencyServiceImpl) Convert(ctx context.Context, amount int64, fromCode, toCode string) (int64, error) {
	if amount < 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	from, err := s.Get(ctx, fromCode)
	if err != nil {
		return 0, err
	}
	if from == nil {
		return 0, apperror.ErrCurrencyNotSupported()
	}

	to, err := s.Get(ctx, toCode)
	if err != nil {
		return 0, err
	}
	if to == nil {
		return 0, apperror.ErrCurrencyNotSupported()
	}

	product := decimal.NewFromInt(amount).Mul(decimal.NewFromInt(to.RateMicroUSD))
	quotient, _ := product.QuoRem(decimal.NewFromInt(from.RateMicroUSD), 0)
	return quotient.IntPart(), nil
}

// Seed registers the well-known bootstrap currencies. It is idempotent:
// codes already present are left untouched, so operator rate updates survive
// restarts.
func (s *CurrencyServiceImpl) Seed(ctx context.Context) error {
	now := time.Now().UTC()
	defaults := []domain.Currency{
		{Code: "USD", RateMicroUSD: 1_000_000, DecimalPlaces: 2},
		{Code: "EUR", RateMicroUSD: 1_100_000, DecimalPlaces: 2},
		{Code: "GBP", RateMicroUSD: 1_250_000, DecimalPlaces: 2},
		{Code: "JPY", RateMicroUSD: 7_500, DecimalPlaces: 0},
		{Code: s.nativeCode, RateMicroUSD: 500_000, DecimalPlaces: 6},
	}

	for i := range defaults {
		c := defaults[i]
		c.Kind = domain.ResolveKind(c.Code, s.nativeCode)
		c.Enabled = true
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := s.repo.EnsureExists(ctx, &c); err != nil {
			return apperror.InternalError(fmt.Errorf("seed currency %s: %w", c.Code, err))
		}
	}

	s.log.Info().Int("count", len(defaults)).Msg("currency registry seeded")
	return nil
}
