package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/caseledger/internal/adapter/http"
	"github.com/iho/caseledger/internal/adapter/http/handler"
	"github.com/iho/caseledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/caseledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/caseledger/internal/adapter/repository/redis"
	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/infrastructure/auth"
	"github.com/iho/caseledger/internal/infrastructure/config"
	"github.com/iho/caseledger/internal/infrastructure/logger"
	"github.com/iho/caseledger/internal/infrastructure/metrics"
	"github.com/iho/caseledger/internal/infrastructure/postgres"
	"github.com/iho/caseledger/internal/infrastructure/redis"
	"github.com/iho/caseledger/internal/infrastructure/scheduler"
	"github.com/iho/caseledger/internal/usecase"
)

const limiterIdleTTL = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	caseRepo := postgresRepo.NewCaseRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier().OnRetry(m.RecordRetry)

	// Initialize use cases
	engine := domain.NewAllocationEngine(cfg.DefaultPercentA)
	caseUC := usecase.NewCaseUseCase(txManager, caseRepo, paymentRepo, expenseRepo, idGen, retrier, engine, cfg.AllowHardDelete)
	paymentUC := usecase.NewPaymentUseCase(txManager, caseRepo, paymentRepo, idGen)
	expenseUC := usecase.NewExpenseUseCase(txManager, caseRepo, expenseRepo, idGen)
	reportUC := usecase.NewReportUseCase(caseRepo, paymentRepo, expenseRepo, engine, m, loc)

	routerCfg := httpAdapter.RouterConfig{
		CaseHandler:    handler.NewCaseHandler(caseUC),
		PaymentHandler: handler.NewPaymentHandler(paymentUC),
		ExpenseHandler: handler.NewExpenseHandler(expenseUC),
		AdminHandler:   handler.NewAdminHandler(caseUC),
		HealthHandler: handler.NewHealthHandler(
			handler.HealthCheck{Name: "postgres", Check: pool.Ping},
			handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		),
		Logger:           log,
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      newRateLimiter(cfg, m),
		Metrics:          m,
		Gatherer:         registry,
	}

	if cache := newReportCache(cfg, redisClient); cache != nil {
		routerCfg.ReportHandler = handler.NewReportHandler(reportUC, cache)
		routerCfg.CacheInvalidator = cache
		log.Info().Dur("ttl", cfg.ReportCacheTTL).Msg("report cache enabled")
	} else {
		routerCfg.ReportHandler = handler.NewReportHandler(reportUC, nil)
	}

	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("bearer authentication enabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if limiter := routerCfg.RateLimiter; limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(limiterIdleTTL)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					limiter.CleanupLimiters(limiterIdleTTL)
				}
			}
		})
	}

	if cfg.ClosingSchedule != "" {
		job := scheduler.NewClosingJob(reportUC, m, loc, log)
		if err := job.Start(cfg.ClosingSchedule); err != nil {
			return fmt.Errorf("start closing job: %w", err)
		}
		log.Info().Str("schedule", cfg.ClosingSchedule).Msg("daily closing scheduled")
		g.Go(func() error {
			<-gctx.Done()
			<-job.Stop().Done()
			return nil
		})
	}

	return g.Wait()
}

// newRateLimiter returns nil when rate limiting is disabled.
func newRateLimiter(cfg *config.Config, m *metrics.Metrics) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)
}

// newReportCache returns nil when report caching is disabled.
func newReportCache(cfg *config.Config, client *goredis.Client) *redisRepo.ReportCache {
	if cfg.ReportCacheTTL <= 0 {
		return nil
	}
	return redisRepo.NewReportCache(client, cfg.ReportCacheTTL)
}
