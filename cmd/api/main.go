package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/config"
	"github.com/gkouam/soulbondai-sub004/internal/counter"
	"github.com/gkouam/soulbondai-sub004/internal/db"
	apihttp "github.com/gkouam/soulbondai-sub004/internal/http"
	"github.com/gkouam/soulbondai-sub004/internal/llm"
	"github.com/gkouam/soulbondai-sub004/internal/repository"
	"github.com/gkouam/soulbondai-sub004/internal/scheduler"
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

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	memoryRepo := repository.NewPgMemoryRepository(pool)
	eventRepo := repository.NewPgEventRepository(pool)
	subscriptionRepo := repository.NewPgSubscriptionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	var (
		tokenStore   service.RefreshTokenStore
		counterStore counter.Store
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			counterStore = counter.NewRedisStore(redisClient)
		}
		cancel()
	}
	if counterStore == nil {
		// Sin contador compartido el gate de cupos no puede ser race-safe.
		logger.Fatal("redis counter store is required")
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)

	relationshipSvc := service.NewRelationshipService(logger, profileRepo, eventRepo)
	memorySvc := service.NewMemoryService(logger, memoryRepo, subscriptionRepo)
	gateSvc := service.NewGateService(logger, subscriptionRepo, profileRepo, counterStore)
	engagementSvc := service.NewEngagementService(
		logger,
		gateSvc,
		memorySvc,
		relationshipSvc,
		messageRepo,
		service.CompanionPromptBuilder{},
		llmClient,
	)
	userSvc := service.NewUserService(logger, userRepo)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	engagementHandler := apihttp.NewEngagementHandler(logger, engagementSvc, relationshipSvc, gateSvc, memorySvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, engagementHandler)

	sched, err := scheduler.New(logger)
	if err != nil {
		logger.Fatal("scheduler init", zap.Error(err))
	}
	if err := sched.AddCronJob("memory-retention-sweep", cfg.SweepCron, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := memorySvc.SweepExpired(sweepCtx, time.Now().UTC()); err != nil {
			logger.Error("retention sweep failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule sweep", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
