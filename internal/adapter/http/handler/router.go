package handler

import (
	"multicurrency-ledger/internal/adapter/http/middleware"
	redisStore "multicurrency-ledger/internal/adapter/storage/redis"
	"multicurrency-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CurrencySvc    ports.CurrencyService
	PaymentSvc     ports.PaymentService
	BalanceSvc     ports.BalanceService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// All API routes require a caller identity.
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	currencyHandler := NewCurrencyHandler(deps.CurrencySvc)
	currencies := v1.Group("/currencies")
	{
		currencies.POST("", rl("currencies"), currencyHandler.Register)
		currencies.GET("", rl("queries"), currencyHandler.List)
		currencies.GET("/:code", rl("queries"), currencyHandler.Get)
	}
	v1.GET("/convert", rl("queries"), currencyHandler.Convert)

	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	payments := v1.Group("/payments")
	{
		payments.POST("", rl("payments"), paymentHandler.Create)
		payments.GET("", rl("queries"), paymentHandler.List)
		payments.GET("/:id", rl("queries"), paymentHandler.Get)
		payments.POST("/:id/settle", rl("settle"), paymentHandler.Settle)
	}

	balanceHandler := NewBalanceHandler(deps.BalanceSvc)
	v1.GET("/balances/:currency", rl("queries"), balanceHandler.Get)
	v1.POST("/withdrawals", rl("withdrawals"), balanceHandler.Withdraw)

	return r
}
