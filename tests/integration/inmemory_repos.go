package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory repository implementations backing the integration tests. They
// satisfy the same ports as the postgres adapters, so the full service and
// HTTP stack runs unchanged against them.

// --- Currency repo ---

type inMemoryCurrencyRepo struct {
	mu         sync.RWMutex
	currencies map[string]domain.Currency // keyed by code
}

func newInMemoryCurrencyRepo() *inMemoryCurrencyRepo {
	return &inMemoryCurrencyRepo{currencies: make(map[string]domain.Currency)}
}

func (r *inMemoryCurrencyRepo) Upsert(ctx context.Context, currency *domain.Currency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currencies[currency.Code] = *currency
	return nil
}

func (r *inMemoryCurrencyRepo) EnsureExists(ctx context.Context, currency *domain.Currency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.currencies[currency.Code]; ok {
		return nil
	}
	r.currencies[currency.Code] = *currency
	return nil
}

func (r *inMemoryCurrencyRepo) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[code]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *inMemoryCurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Currency, 0, len(r.currencies))
	for _, c := range r.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// --- Payment repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[string]domain.Payment // keyed by id
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[string]domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = *payment
	return nil
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *inMemoryPaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryPaymentRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id string, settlementRef *int64, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return pgx.ErrNoRows
	}
	p.Status = domain.PaymentStatusCompleted
	p.SettlementRef = settlementRef
	p.SettledAt = &settledAt
	r.payments[id] = p
	return nil
}

func (r *inMemoryPaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Payment
	for _, p := range r.payments {
		if params.MerchantID != nil && p.MerchantID != *params.MerchantID {
			continue
		}
		if params.CustomerID != nil && p.CustomerID != *params.CustomerID {
			continue
		}
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		if params.Currency != nil && p.Currency != *params.Currency {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Sequence > matched[j].Sequence })

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return []domain.Payment{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// --- Sequence repo ---

type inMemorySequenceRepo struct {
	mu   sync.Mutex
	next int64
}

func newInMemorySequenceRepo() *inMemorySequenceRepo {
	return &inMemorySequenceRepo{}
}

func (r *inMemorySequenceRepo) EnsureInitialized(ctx context.Context) error {
	return nil
}

func (r *inMemorySequenceRepo) Next(ctx context.Context, tx pgx.Tx) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.next
	r.next++
	return n, nil
}

// --- Balance repo ---

type balanceKey struct {
	merchantID uuid.UUID
	currency   string
}

type inMemoryBalanceRepo struct {
	mu       sync.RWMutex
	balances map[balanceKey]domain.Balance
}

func newInMemoryBalanceRepo() *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{balances: make(map[balanceKey]domain.Balance)}
}

func (r *inMemoryBalanceRepo) EnsureRow(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey{merchantID, currency}
	if _, ok := r.balances[key]; !ok {
		r.balances[key] = domain.Balance{MerchantID: merchantID, Currency: currency, UpdatedAt: time.Now().UTC()}
	}
	return nil
}

func (r *inMemoryBalanceRepo) Get(ctx context.Context, merchantID uuid.UUID, currency string) (*domain.Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.balances[balanceKey{merchantID, currency}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *inMemoryBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency string) (*domain.Balance, error) {
	return r.Get(ctx, merchantID, currency)
}

func (r *inMemoryBalanceRepo) Upsert(ctx context.Context, tx pgx.Tx, balance *domain.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey{balance.MerchantID, balance.Currency}] = *balance
	return nil
}

// --- Audit repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *log)
	return nil
}

// --- Transferer stub ---

// stubTransferer records transfers and optionally fails every call. A
// serializing mutex stands in for the host's atomic transfer guarantee.
type transferCall struct {
	amount   int64
	from, to uuid.UUID
}

type stubTransferer struct {
	mu       sync.Mutex
	failWith error
	calls    []transferCall
}

func (s *stubTransferer) Transfer(ctx context.Context, amount int64, from, to uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.calls = append(s.calls, transferCall{amount: amount, from: from, to: to})
	return nil
}

func (s *stubTransferer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubTransferer) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *stubTransferer) call(i int) transferCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

// --- Transactor ---

// inMemoryTransactor serializes all "transactions" behind one mutex, which
// gives the in-memory stack the same effective isolation as row locking.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &noopTx{release: func() { t.mu.Unlock() }}, nil
}

// noopTx satisfies pgx.Tx without a database. Commit and Rollback release
// the transactor's mutex exactly once.
type noopTx struct {
	once    sync.Once
	release func()
}

func (t *noopTx) done() {
	t.once.Do(t.release)
}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *noopTx) Commit(ctx context.Context) error {
	t.done()
	return nil
}

func (t *noopTx) Rollback(ctx context.Context) error {
	t.done()
	return nil
}

func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *noopTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}

func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (t *noopTx) Conn() *pgx.Conn { return nil }
