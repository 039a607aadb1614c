package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/closing"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/coa"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/mappings"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/reports"
	"github.com/nubixconta/nubixconta-backend/internal/app"
	"github.com/nubixconta/nubixconta-backend/internal/documents"
	"github.com/nubixconta/nubixconta-backend/internal/observability"
	"github.com/nubixconta/nubixconta-backend/internal/platform/db"
	"github.com/nubixconta/nubixconta-backend/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	coaRepo := coa.NewRepository(pool)
	coaService := coa.NewService(coaRepo)
	coaHandler := coa.NewHandler(logger, coaService)

	mappingsRepo := mappings.NewRepository(pool)

	closingRepo := closing.NewRepository(pool)
	closingService := closing.NewService(closingRepo)
	closingHandler := closing.NewHandler(logger, closingService)

	ledgerRepo := ledger.NewRepository(pool)

	reportsCache := reports.NewCache(redisClient, cfg.CacheTTL)
	if err := reportsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("report cache invalidation listener", slog.Any("error", err))
	}
	reportsService := reports.NewService(ledgerRepo, reportsCache, logger)
	reportsHandler := reports.NewHandler(logger, reportsService)

	metrics := observability.NewMetrics()

	documentsRepo := documents.NewRepository(pool, ledgerRepo)
	documentsService := documents.NewService(documentsRepo, closingService, coaService, mappingsRepo, auditLogger, reportsCache, metrics, logger)
	documentsHandler := documents.NewHandler(logger, documentsService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AccountsHandler:  coaHandler,
		ClosingHandler:   closingHandler,
		ReportsHandler:   reportsHandler,
		DocumentsHandler: documentsHandler,
		Pool:             pool,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
}
