package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"stackit.dev/forum/internal/bootstrap"
	"stackit.dev/forum/internal/config"
	"stackit.dev/forum/internal/server"
	"stackit.dev/forum/pkg/database"
	"stackit.dev/forum/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.Connect(cfg.DSN())
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if _, err := bootstrap.SeedTags(ctx, db); err != nil {
		log.Fatalf("failed to seed tags: %v", err)
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("redis unavailable, cooldowns, realtime notifications and view counts disabled: %v", err)
		redisClient = nil
	}

	imageStorage, err := storage.New(ctx, cfg.StorageOptions())
	if err != nil {
		log.Fatalf("failed to initialize image storage: %v", err)
	}

	srv := server.NewServer(cfg, db, redisClient, imageStorage)
	if err := srv.StartWorkers(ctx); err != nil {
		log.Fatalf("failed to schedule background jobs: %v", err)
	}

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
