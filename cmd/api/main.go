package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multicurrency-ledger/config"
	httpHandler "multicurrency-ledger/internal/adapter/http/handler"
	pgStorage "multicurrency-ledger/internal/adapter/storage/postgres"
	redisStorage "multicurrency-ledger/internal/adapter/storage/redis"
	"multicurrency-ledger/internal/adapter/transfer"
	"multicurrency-ledger/internal/core/ports"
	"multicurrency-ledger/internal/service"
	"multicurrency-ledger/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("native_currency", cfg.Ledger.NativeCurrency).
		Msg("Starting Multi-Currency Ledger")

	adminID := uuid.Nil
	if cfg.Ledger.AdminAccountID != "" {
		adminID, err = uuid.Parse(cfg.Ledger.AdminAccountID)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid ledger.admin_account_id")
		}
	} else {
		log.Warn().Msg("No admin account configured, currency registration is disabled")
	}

	custodyID := uuid.Nil
	if cfg.Custody.AccountID != "" {
		custodyID, err = uuid.Parse(cfg.Custody.AccountID)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid custody.account_id")
		}
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	currencyRepo := pgStorage.NewCurrencyRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	sequenceRepo := pgStorage.NewSequenceRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	currencyCache := redisStorage.NewCurrencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Custody transfer client for the native asset
	transferClient := transfer.NewClient(cfg.Custody, log)

	// Initialize core services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize business services
	currencySvc := service.NewCurrencyService(currencyRepo, currencyCache, adminID, cfg.Ledger.NativeCurrency, log)
	paymentSvc := service.NewPaymentService(
		paymentRepo,
		sequenceRepo,
		balanceRepo,
		currencySvc,
		transferClient,
		transactor,
		log,
	)
	balanceSvc := service.NewBalanceService(balanceRepo, currencySvc, transferClient, transactor, custodyID, log)

	// Bootstrap the payment counter row (idempotent)
	if err := sequenceRepo.EnsureInitialized(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize payment counter")
	}

	// Seed well-known currencies (idempotent)
	if cfg.Ledger.SeedCurrencies {
		if err := currencySvc.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed currencies")
		}
		log.Info().Msg("Currency registry seeded")
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CurrencySvc:    currencySvc,
		PaymentSvc:     paymentSvc,
		BalanceSvc:     balanceSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
