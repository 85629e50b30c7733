package service

import (
	"context"
	"testing"

	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"
	"multicurrency-ledger/internal/core/ports/mocks"
	"multicurrency-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type currencyTestDeps struct {
	svc     *CurrencyServiceImpl
	repo    *mocks.MockCurrencyRepository
	cache   *mocks.MockCurrencyCache
	adminID uuid.UUID
	ctrl    *gomock.Controller
}

func setupCurrencyService(t *testing.T) *currencyTestDeps {
	ctrl := gomock.NewController(t)
	d := &currencyTestDeps{
		repo:    mocks.NewMockCurrencyRepository(ctrl),
		cache:   mocks.NewMockCurrencyCache(ctrl),
		adminID: uuid.New(),
		ctrl:    ctrl,
	}
	d.svc = NewCurrencyService(d.repo, d.cache, d.adminID, "NATIVE", zerolog.Nop())
	return d
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok, "expected *apperror.AppError, got %T", err)
	return appErr.Code
}

// ==================== Register Tests ====================

func TestCurrencyService_Register_Success(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	d.repo.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, "VND").Return(nil)

	result, err := d.svc.Register(ctx, ports.RegisterCurrencyRequest{
		CallerID:      d.adminID,
		Code:          "VND",
		RateMicroUSD:  40,
		DecimalPlaces: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "VND", result.Code)
	assert.Equal(t, domain.CurrencyKindExternal, result.Kind)
	assert.True(t, result.Enabled)
	assert.Equal(t, int64(40), result.RateMicroUSD)
}

func TestCurrencyService_Register_NativeKindResolved(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	d.repo.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Currency) error {
			assert.Equal(t, domain.CurrencyKindNative, c.Kind)
			return nil
		})
	d.cache.EXPECT().Invalidate(ctx, "NATIVE").Return(nil)

	result, err := d.svc.Register(ctx, ports.RegisterCurrencyRequest{
		CallerID:      d.adminID,
		Code:          "NATIVE",
		RateMicroUSD:  600_000,
		DecimalPlaces: 6,
	})
	require.NoError(t, err)
	assert.True(t, result.IsNative())
}

func TestCurrencyService_Register_NotAuthorized(t *testing.T) {
	d := setupCurrencyService(t)

	_, err := d.svc.Register(context.Background(), ports.RegisterCurrencyRequest{
		CallerID:     uuid.New(), // not the admin
		Code:         "VND",
		RateMicroUSD: 40,
	})
	require.Error(t, err)
	assert.Equal(t, "LED_001", appErrCode(t, err))
}

func TestCurrencyService_Register_InvalidRate(t *testing.T) {
	d := setupCurrencyService(t)

	for _, rate := range []int64{0, -5} {
		_, err := d.svc.Register(context.Background(), ports.RegisterCurrencyRequest{
			CallerID:     d.adminID,
			Code:         "VND",
			RateMicroUSD: rate,
		})
		require.Error(t, err)
		assert.Equal(t, "LED_002", appErrCode(t, err))
	}
}

func TestCurrencyService_Register_InvalidCode(t *testing.T) {
	d := setupCurrencyService(t)

	for _, code := range []string{"", "usd", "TOOLONGCODE", "U1"} {
		_, err := d.svc.Register(context.Background(), ports.RegisterCurrencyRequest{
			CallerID:     d.adminID,
			Code:         code,
			RateMicroUSD: 1,
		})
		require.Error(t, err, "code %q should be rejected", code)
	}
}

// ==================== Get Tests ====================

func TestCurrencyService_Get_CacheHit(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	cached := &domain.Currency{Code: "USD", Enabled: true, RateMicroUSD: 1_000_000}
	d.cache.EXPECT().Get(ctx, "USD").Return(cached, nil)

	result, err := d.svc.Get(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, cached, result)
}

func TestCurrencyService_Get_CacheMissFallsThrough(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	stored := &domain.Currency{Code: "EUR", Enabled: true, RateMicroUSD: 1_100_000}
	d.cache.EXPECT().Get(ctx, "EUR").Return(nil, nil)
	d.repo.EXPECT().GetByCode(ctx, "EUR").Return(stored, nil)
	d.cache.EXPECT().Set(ctx, stored, currencyCacheTTL).Return(nil)

	result, err := d.svc.Get(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, stored, result)
}

func TestCurrencyService_Get_Absent(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, "XYZ").Return(nil, nil)
	d.repo.EXPECT().GetByCode(ctx, "XYZ").Return(nil, nil)

	result, err := d.svc.Get(ctx, "XYZ")
	require.NoError(t, err)
	assert.Nil(t, result)
}

// ==================== Convert Tests ====================

func expectCurrency(d *currencyTestDeps, ctx context.Context, c *domain.Currency) {
	d.cache.EXPECT().Get(ctx, c.Code).Return(c, nil)
}

func TestCurrencyService_Convert_USDToEUR(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	expectCurrency(d, ctx, &domain.Currency{Code: "USD", Enabled: true, RateMicroUSD: 1_000_000})
	expectCurrency(d, ctx, &domain.Currency{Code: "EUR", Enabled: true, RateMicroUSD: 1_100_000})

	result, err := d.svc.Convert(ctx, 1_000_000, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(1_100_000), result)
}

func TestCurrencyService_Convert_TruncatesTowardZero(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	// 7 * 7500 / 1000000 = 0.0525 -> 0
	expectCurrency(d, ctx, &domain.Currency{Code: "USD", Enabled: true, RateMicroUSD: 1_000_000})
	expectCurrency(d, ctx, &domain.Currency{Code: "JPY", Enabled: true, RateMicroUSD: 7_500})

	result, err := d.svc.Convert(ctx, 7, "USD", "JPY")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result)
}

func TestCurrencyService_Convert_RoundTripWithinOneUnitPerStep(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	gbp := &domain.Currency{Code: "GBP", Enabled: true, RateMicroUSD: 1_250_000}
	eur := &domain.Currency{Code: "EUR", Enabled: true, RateMicroUSD: 1_100_000}

	expectCurrency(d, ctx, gbp)
	expectCurrency(d, ctx, eur)
	forward, err := d.svc.Convert(ctx, 9_999, "GBP", "EUR")
	require.NoError(t, err)

	expectCurrency(d, ctx, eur)
	expectCurrency(d, ctx, gbp)
	back, err := d.svc.Convert(ctx, forward, "EUR", "GBP")
	require.NoError(t, err)

	assert.LessOrEqual(t, back, int64(9_999))
	assert.GreaterOrEqual(t, back, int64(9_999-2))
}

func TestCurrencyService_Convert_UnknownCurrency(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, "XYZ").Return(nil, nil)
	d.repo.EXPECT().GetByCode(ctx, "XYZ").Return(nil, nil)

	_, err := d.svc.Convert(ctx, 100, "XYZ", "USD")
	require.Error(t, err)
	assert.Equal(t, "LED_006", appErrCode(t, err))
}

func TestCurrencyService_Convert_DisabledCurrencyStillConverts(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	// Conversion is decoupled from the enabled flag.
	expectCurrency(d, ctx, &domain.Currency{Code: "USD", Enabled: false, RateMicroUSD: 1_000_000})
	expectCurrency(d, ctx, &domain.Currency{Code: "EUR", Enabled: true, RateMicroUSD: 1_100_000})

	result, err := d.svc.Convert(ctx, 100, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(110), result)
}

func TestCurrencyService_Convert_LargeAmountNoOverflow(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	// amount * rate would overflow int64; the widened intermediate must not.
	expectCurrency(d, ctx, &domain.Currency{Code: "GBP", Enabled: true, RateMicroUSD: 1_250_000})
	expectCurrency(d, ctx, &domain.Currency{Code: "USD", Enabled: true, RateMicroUSD: 1_000_000})

	// floor(2^60 * 1_000_000 / 1_250_000) = floor(2^62 / 5)
	result, err := d.svc.Convert(ctx, 1<<60, "GBP", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1<<62/5), result)
}

// ==================== Seed Tests ====================

func TestCurrencyService_Seed_RegistersFiveCurrencies(t *testing.T) {
	d := setupCurrencyService(t)
	ctx := context.Background()

	seeded := make(map[string]*domain.Currency)
	d.repo.EXPECT().EnsureExists(ctx, gomock.Any()).Times(5).DoAndReturn(
		func(_ context.Context, c *domain.Currency) error {
			seeded[c.Code] = c
			return nil
		})

	require.NoError(t, d.svc.Seed(ctx))

	require.Len(t, seeded, 5)
	assert.Equal(t, int64(1_000_000), seeded["USD"].RateMicroUSD)
	assert.Equal(t, int64(1_100_000), seeded["EUR"].RateMicroUSD)
	assert.Equal(t, int64(1_250_000), seeded["GBP"].RateMicroUSD)
	assert.Equal(t, int64(7_500), seeded["JPY"].RateMicroUSD)
	assert.Equal(t, int32(0), seeded["JPY"].DecimalPlaces)

	native := seeded["NATIVE"]
	require.NotNil(t, native)
	assert.Equal(t, domain.CurrencyKindNative, native.Kind)
	assert.Equal(t, int64(500_000), native.RateMicroUSD)
	assert.Equal(t, int32(6), native.DecimalPlaces)
	for _, c := range seeded {
		assert.True(t, c.Enabled)
	}
}
