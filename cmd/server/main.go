package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/online-loan-project/jorngka-backend/internal/adapter/http"
	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/handler"
	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/middleware"
	postgresRepo "github.com/online-loan-project/jorngka-backend/internal/adapter/repository/postgres"
	redisRepo "github.com/online-loan-project/jorngka-backend/internal/adapter/repository/redis"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/config"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/dispatcher"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/kyc"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/logger"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/metrics"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/postgres"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/redis"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/telegram"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	accountRepo := postgresRepo.NewCreditAccountRepository(pool)
	entryRepo := postgresRepo.NewCreditTransactionRepository(pool)
	requestRepo := postgresRepo.NewLoanRequestRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	installmentRepo := postgresRepo.NewInstallmentRepository(pool)
	borrowerRepo := postgresRepo.NewBorrowerRepository(pool)
	scoreRepo := postgresRepo.NewCreditScoreRepository(pool, idGen)
	rateRepo := postgresRepo.NewInterestRateRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	sweepLock := redisRepo.NewSweepLock(redisClient)

	// Business metrics
	appMetrics := metrics.New()

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, entryRepo, outboxRepo, idGen, retrier, cfg.OperatorChatID, appMetrics, appLogger)
	loanUC := usecase.NewLoanUseCase(txManager, requestRepo, loanRepo, installmentRepo, scoreRepo, borrowerRepo, rateRepo, outboxRepo, ledgerUC, idGen, retrier, cfg.OperatorChatID, appMetrics, appLogger)
	repaymentUC := usecase.NewRepaymentUseCase(txManager, installmentRepo, loanRepo, scoreRepo, borrowerRepo, outboxRepo, ledgerUC, idGen, retrier, appMetrics, appLogger)
	sweeperUC := usecase.NewSweeperUseCase(txManager, installmentRepo, loanRepo, scoreRepo, borrowerRepo, outboxRepo, idGen, appLogger)

	// Optional NID OCR extraction
	var extractor handler.NidExtractor
	if cfg.OcrBaseURL != "" {
		extractor = kyc.NewClient(cfg.OcrBaseURL, cfg.OcrAPIKey)
	}

	// Initialize handlers
	loanRequestHandler := handler.NewLoanRequestHandler(loanUC, extractor)
	loanHandler := handler.NewLoanHandler(loanUC)
	repaymentHandler := handler.NewRepaymentHandler(repaymentUC)
	creditHandler := handler.NewCreditHandler(ledgerUC)
	sweepHandler := handler.NewSweepHandler(sweeperUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, appMetrics)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LoanRequestHandler: loanRequestHandler,
		LoanHandler:        loanHandler,
		RepaymentHandler:   repaymentHandler,
		CreditHandler:      creditHandler,
		SweepHandler:       sweepHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        rateLimiter,
		Logger:             appLogger,
	})

	if account, err := ledgerUC.GetAccount(ctx); err == nil {
		balance, _ := account.Balance.Float64()
		appMetrics.CreditBalance.Set(balance)
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	// Notification dispatcher
	var notifier telegram.Notifier
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBotNotifier(cfg.TelegramBotToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create telegram notifier")
		}
		notifier = bot
	} else {
		notifier = telegram.NewLogNotifier(appLogger)
		log.Warn().Msg("no telegram token configured, notifications will be logged")
	}

	go func() {
		d := dispatcher.New(dispatcher.Config{
			OutboxRepo: outboxRepo,
			Notifier:   notifier,
			Logger:     appLogger,
			Metrics:    appMetrics,
			BatchSize:  cfg.DispatchBatchSize,
			Interval:   cfg.DispatchInterval,
		})
		if err := d.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("dispatcher stopped")
		}
	}()

	// Scheduled sweeps, guarded by a Redis lock so only one instance runs them
	go runSweep(workerCtx, "late", cfg.LateSweepInterval, sweepLock, appMetrics, sweeperUC.RunLateSweep)
	go runSweep(workerCtx, "upcoming", cfg.UpcomingSweepInterval, sweepLock, appMetrics, sweeperUC.RunUpcomingReminderSweep)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupVisitors(3 * time.Hour)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				appMetrics.DBConnections.Set(float64(pool.Stat().TotalConns()))
			}
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

type sweepLocker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// runSweep runs one sweep kind on a ticker. The Redis lock keeps concurrent
// instances from sweeping the same rows.
func runSweep(ctx context.Context, kind string, interval time.Duration, lock sweepLocker, m *metrics.Metrics, sweep func(context.Context) (int, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			acquired, err := lock.Acquire(ctx, kind, interval/2)
			if err != nil {
				log.Error().Err(err).Str("sweep", kind).Msg("failed to acquire sweep lock")
				continue
			}
			if !acquired {
				continue
			}

			start := time.Now()
			processed, err := sweep(ctx)

			m.SweepRuns.WithLabelValues(kind).Inc()
			m.SweepDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

			if err != nil {
				log.Error().Err(err).Str("sweep", kind).Msg("sweep failed")
			} else {
				m.SweepMarked.WithLabelValues(kind).Add(float64(processed))
				log.Info().Str("sweep", kind).Int("processed", processed).Msg("sweep completed")
			}

			if err := lock.Release(ctx, kind); err != nil {
				log.Error().Err(err).Str("sweep", kind).Msg("failed to release sweep lock")
			}
		}
	}
}
