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

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/ledger"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/periods"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/reports"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/settlement"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/vouchers"
	"github.com/ledgerkeep/ledgerkeep/internal/app"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/partners"
	"github.com/ledgerkeep/ledgerkeep/internal/observability"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/cache"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/db"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, ledger cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	ledgerCache := ledger.NewCache(redisClient, cfg.CacheTTL)

	accountsRepo := accounts.NewRepository(dbpool)
	partnersRepo := partners.NewRepository(dbpool)

	voucherRepo := vouchers.NewRepository(dbpool)
	voucherService := vouchers.NewService(voucherRepo, auditLogger, ledgerCache)
	voucherHandler := vouchers.NewHandler(logger, voucherService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, accountsRepo, partnersRepo, ledgerCache)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	metrics := observability.NewMetrics()

	periodRepo := periods.NewRepository(dbpool)
	periodService := periods.NewService(periodRepo, auditLogger, ledgerCache)
	periodHandler := periods.NewHandler(logger, periodService, metrics)

	settlementRepo := settlement.NewRepository(dbpool)
	settlementService := settlement.NewService(settlementRepo, auditLogger, ledgerCache)
	settlementHandler := settlement.NewHandler(logger, settlementService, metrics)

	reportRepo := reports.NewRepository(dbpool)
	reportService := reports.NewService(reportRepo)
	reportHandler := reports.NewHandler(logger, reportService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		VoucherHandler:    voucherHandler,
		LedgerHandler:     ledgerHandler,
		PeriodHandler:     periodHandler,
		SettlementHandler: settlementHandler,
		ReportHandler:     reportHandler,
		Metrics:           metrics,
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
