package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"multicurrency-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	done    chan struct{}
}

func (r *capturingAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	close(r.done)
	return nil
}

func TestAuditService_LogPersistsEntry(t *testing.T) {
	repo := &capturingAuditRepo{done: make(chan struct{})}
	svc := NewAuditService(repo, zerolog.Nop())

	actor := uuid.New()
	svc.Log(context.Background(), &domain.AuditLog{
		ActorID:      &actor,
		Action:       domain.AuditActionCreatePayment,
		ResourceType: "payment",
		ResourceID:   "0",
		IPAddress:    "10.0.0.1",
	})

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was not persisted")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.entries, 1)
	assert.Equal(t, domain.AuditActionCreatePayment, repo.entries[0].Action)
	assert.Equal(t, "0", repo.entries[0].ResourceID)
}

func TestAuditService_NilRepoDoesNotPanic(t *testing.T) {
	svc := NewAuditService(nil, zerolog.Nop())

	assert.NotPanics(t, func() {
		svc.Log(context.Background(), &domain.AuditLog{
			Action:       domain.AuditActionWithdraw,
			ResourceType: "balance",
			ResourceID:   "USD",
		})
		time.Sleep(50 * time.Millisecond)
	})
}
