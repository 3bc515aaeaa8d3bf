package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sweeps-casino/config"
	httpHandler "sweeps-casino/internal/adapter/http/handler"
	"sweeps-casino/internal/adapter/mq/kafka"
	pgStorage "sweeps-casino/internal/adapter/storage/postgres"
	redisStorage "sweeps-casino/internal/adapter/storage/redis"
	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/internal/service"
	"sweeps-casino/pkg/logger"
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
		Msg("Starting Sweeps Casino engine")

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
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	roundRepo := pgStorage.NewRoundRepo(pool)
	redemptionRepo := pgStorage.NewRedemptionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	grantClaimStore := redisStorage.NewGrantClaimStore(rdb)

	// Initialize core services
	encSvc, err := service.NewSeedEncryptionService(cfg.Seed.MasterKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize seed encryption service")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	fairnessSvc := service.NewCommitRevealFairness()
	slotSvc := service.NewSlotEngine(&domain.NeonHeist)

	// Settlement event publishing is optional.
	var events ports.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect Kafka producer")
		}
		defer producer.Close()
		events = producer
	}

	// Initialize business services
	ledgerSvc := service.NewLedgerEngine(walletRepo, txRepo, idempotencyCache, transactor, log)
	walletSvc := service.NewWalletStore(walletRepo)
	grantSvc := service.NewDailyGrantService(walletSvc, ledgerSvc, grantClaimStore, log)
	purchaseSvc := service.NewMockPurchaseService(walletSvc, ledgerSvc, log)
	redemptionSvc := service.NewRedemptionLockService(walletSvc, ledgerSvc, redemptionRepo, transactor, log)
	roundSvc := service.NewRoundEngine(roundRepo, walletSvc, ledgerSvc, fairnessSvc, slotSvc, encSvc, transactor, events, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		GrantSvc:       grantSvc,
		PurchaseSvc:    purchaseSvc,
		RedemptionSvc:  redemptionSvc,
		RoundSvc:       roundSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
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
