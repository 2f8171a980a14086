package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viewearn/backend/internal/config"
	"github.com/viewearn/backend/internal/db"
	"github.com/viewearn/backend/internal/events"
	"github.com/viewearn/backend/internal/repositories"
	"github.com/viewearn/backend/internal/services"
	"go.uber.org/zap"
)

const sweepBatch = 100

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	store := repositories.NewStore(pool)
	publisher := events.NewRedisPublisher(rdb, log)
	viewService := services.NewViewService(store, publisher, cfg, log)
	campaignService := services.NewCampaignService(store, publisher, log)

	log.Info("worker started",
		zap.Duration("reaper_interval", cfg.ReaperInterval),
		zap.Duration("budget_sweep_interval", cfg.BudgetSweepInterval),
	)

	reaperTicker := time.NewTicker(cfg.ReaperInterval)
	sweepTicker := time.NewTicker(cfg.BudgetSweepInterval)
	defer reaperTicker.Stop()
	defer sweepTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-reaperTicker.C:
			runReaper(ctx, viewService, log)
		case <-sweepTicker.C:
			runBudgetSweep(ctx, campaignService, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runReaper(ctx context.Context, viewService *services.ViewService, log *zap.Logger) {
	n, err := viewService.PurgeStalePending(ctx)
	if err != nil {
		log.Error("failed to purge stale pending views", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("purged stale pending views", zap.Int64("count", n))
	}
}

func runBudgetSweep(ctx context.Context, campaignService *services.CampaignService, log *zap.Logger) {
	n, err := campaignService.SweepExhausted(ctx, sweepBatch)
	if err != nil {
		log.Error("budget sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("budget sweep paused campaigns", zap.Int("count", n))
	}
}
