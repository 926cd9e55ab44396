package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/muhasaba-erp/muhasaba-erp/internal/app"
	"github.com/muhasaba-erp/muhasaba-erp/internal/audit"
	"github.com/muhasaba-erp/muhasaba-erp/internal/auth"
	"github.com/muhasaba-erp/muhasaba-erp/internal/documents"
	"github.com/muhasaba-erp/muhasaba-erp/internal/forecast"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/observability"
	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/cache"
	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/db"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
	"github.com/muhasaba-erp/muhasaba-erp/internal/reports"
	"github.com/muhasaba-erp/muhasaba-erp/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var reportCache *cache.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reports served uncached", slog.Any("error", err))
	} else {
		reportCache = cache.NewCache(redisClient, cfg.CacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	guard := rbac.NewGuard()

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo, guard)
	auditHandler := audit.NewHandler(logger, auditService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, guard, auditService, reportCache)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, ledgerService, guard, auditService, reportCache)
	documentsHandler := documents.NewHandler(logger, documentsService)

	reportsService := reports.NewService(ledgerRepo, guard, reportCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	forecastService := forecast.NewService(ledgerRepo, guard, reportCache)
	forecastHandler := forecast.NewHandler(logger, forecastService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Auth:             auth.Middleware{Secret: []byte(cfg.JWTSecret), Logger: logger},
		LedgerHandler:    ledgerHandler,
		DocumentsHandler: documentsHandler,
		ReportsHandler:   reportsHandler,
		ForecastHandler:  forecastHandler,
		AuditHandler:     auditHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
