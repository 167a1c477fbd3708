// cmd/historian is an asynchronous historian service that pops session actions from a Redis
// queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/suitmatch/internal/cache"
	"github.com/jason-s-yu/suitmatch/internal/config"
	"github.com/jason-s-yu/suitmatch/internal/database"
	"github.com/jason-s-yu/suitmatch/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, cfg); err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer database.DB.Close()
	if err := database.EnsureSchema(ctx, database.DB); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer cache.Rdb.Close()

	hs := historian.New(cfg, cache.Rdb, database.DB, logger)
	if err := hs.Run(ctx); err != nil {
		logger.Errorf("final flush: %v", err)
	}
	logger.Info("Historian shutdown complete.")
}
