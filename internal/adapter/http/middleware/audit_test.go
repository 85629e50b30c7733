package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"multicurrency-ledger/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAuditSvc struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (s *recordingAuditSvc) Log(_ context.Context, entry *domain.AuditLog) {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
}

func (s *recordingAuditSvc) snapshot() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.AuditLog(nil), s.entries...)
}

func TestAuditLog_RecordsSettle(t *testing.T) {
	svc := &recordingAuditSvc{}
	actor := uuid.New()

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(CtxAccountID, actor) })
	r.Use(AuditLog(svc))
	r.POST("/api/v1/payments/:id/settle", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/5/settle", nil))
	require.Equal(t, http.StatusOK, w.Code)

	entries := svc.snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionSettlePayment, entries[0].Action)
	assert.Equal(t, "payment", entries[0].ResourceType)
	assert.Equal(t, "5", entries[0].ResourceID)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, actor, *entries[0].ActorID)
	assert.WithinDuration(t, time.Now(), entries[0].CreatedAt, time.Second)
}

func TestAuditLog_SkipsReads(t *testing.T) {
	svc := &recordingAuditSvc{}

	r := gin.New()
	r.Use(AuditLog(svc))
	r.GET("/api/v1/payments/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, svc.snapshot())
}

func TestAuditLog_SkipsFailures(t *testing.T) {
	svc := &recordingAuditSvc{}

	r := gin.New()
	r.Use(AuditLog(svc))
	r.POST("/api/v1/withdrawals", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", nil))

	assert.Empty(t, svc.snapshot())
}

func TestAuditLog_SkipsUnmappedPaths(t *testing.T) {
	svc := &recordingAuditSvc{}

	r := gin.New()
	r.Use(AuditLog(svc))
	r.POST("/api/v1/unknown", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/unknown", nil))

	assert.Empty(t, svc.snapshot())
}
