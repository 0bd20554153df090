// Command sweep corre una pasada unica de retencion de memorias y termina.
// Util para correr el sweep fuera de banda o desde un cron externo.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/config"
	"github.com/gkouam/soulbondai-sub004/internal/db"
	"github.com/gkouam/soulbondai-sub004/internal/repository"
	"github.com/gkouam/soulbondai-sub004/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	memoryRepo := repository.NewPgMemoryRepository(pool)
	subscriptionRepo := repository.NewPgSubscriptionRepository(pool)
	memorySvc := service.NewMemoryService(logger, memoryRepo, subscriptionRepo)

	sweepCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	result, err := memorySvc.SweepExpired(sweepCtx, time.Now().UTC())
	if err != nil {
		logger.Fatal("sweep failed", zap.Error(err))
	}
	logger.Info("sweep done",
		zap.Int("users", result.UsersSwept),
		zap.Int("deleted", result.Deleted),
		zap.Int("failed_users", result.FailedUsers),
	)
}
