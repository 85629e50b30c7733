package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and paths to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var actorID *uuid.UUID
		if id, ok := CallerID(c); ok {
			actorID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			ActorID:      actorID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceIDFromPath(c),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/currencies" && method == "POST":
		return domain.AuditActionRegisterCurrency, "currency"
	case path == "/api/v1/payments" && method == "POST":
		return domain.AuditActionCreatePayment, "payment"
	case strings.HasPrefix(path, "/api/v1/payments/") && strings.HasSuffix(path, "/settle") && method == "POST":
		return domain.AuditActionSettlePayment, "payment"
	case path == "/api/v1/withdrawals" && method == "POST":
		return domain.AuditActionWithdraw, "balance"
	}
	return "", ""
}

// resourceIDFromPath pulls the path parameter most likely to name the
// resource. Empty for collection-level routes.
func resourceIDFromPath(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return ""
}
