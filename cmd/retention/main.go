package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/infra/database"
	"github.com/wayfare-dev/wayfare/internal/infra/logger"
	postgresrepo "github.com/wayfare-dev/wayfare/internal/repository/postgres"
	"github.com/wayfare-dev/wayfare/internal/usecase"
)

// Purges accounts that stayed deactivated beyond the retention window.
// Intended to run from cron or a Kubernetes CronJob.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() {
		_ = zapLog.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, 10*time.Minute)
	defer timeoutCancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, zapLog)
	if err != nil {
		zapLog.Fatal("failed to init postgres", zap.Error(err))
	}
	defer pool.Close()

	accounts := postgresrepo.NewAccountRepository(pool)
	retention := usecase.NewRetentionService(cfg, accounts, zapLog)

	deleted, err := retention.Sweep(ctx)
	if err != nil {
		zapLog.Error("retention sweep failed", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("retention sweep finished", zap.Int64("deleted", deleted))
}
