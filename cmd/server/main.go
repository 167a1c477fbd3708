// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/auth"
	"github.com/jason-s-yu/suitmatch/internal/cache"
	"github.com/jason-s-yu/suitmatch/internal/config"
	"github.com/jason-s-yu/suitmatch/internal/database"
	"github.com/jason-s-yu/suitmatch/internal/game"
	"github.com/jason-s-yu/suitmatch/internal/handlers"
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

	signer, err := auth.NewSigner(cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	srv := handlers.NewSessionServer(signer, logger, cfg.Seed)
	srv.CheckInvariants = logger.IsLevelEnabled(logrus.DebugLevel)
	srv.ExposeDeck = config.GetEnv("EXPOSE_DECK", "") == "true"

	// the action log and the archive are optional; the game runs without them
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warnf("action log disabled: %v", err)
	} else {
		defer cache.Rdb.Close()
		srv.Recorder = cache.NewPublisher(cache.Rdb, cfg.QueueName, logger).Record
	}

	switch err := database.ConnectDB(ctx, cfg); {
	case errors.Is(err, database.ErrNoDatabase):
		logger.Info("no database configured, finished sessions will not be archived")
	case err != nil:
		logger.Warnf("archive disabled: %v", err)
	default:
		defer database.DB.Close()
		if err := database.EnsureSchema(ctx, database.DB); err != nil {
			logger.Fatalf("schema: %v", err)
		}
		srv.OnSessionEnd = archiveSession(logger)
	}

	go srv.Store.RunJanitor(ctx, cfg.IdleTimeout, time.Minute, logger)

	mux := http.NewServeMux()
	srv.Routes(mux)

	server := &http.Server{
		Handler:     mux,
		ReadTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("Running on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case <-ctx.Done():
		logger.Info("terminating")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}

// archiveSession stores each finished session in the background.
func archiveSession(logger logrus.FieldLogger) game.OnSessionEndFunc {
	return func(ownerID uuid.UUID, s game.Session) {
		sum := database.SessionSummary{
			ID:                  s.ID,
			OwnerID:             ownerID,
			EndReason:           string(s.EndReason),
			DiscardedCount:      s.DiscardedCount,
			ReshufflesRemaining: s.ReshufflesRemaining,
			DealAttempts:        s.DealAttempts,
			History:             s.Snapshot(false).History,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.RecordSession(ctx, database.DB, sum); err != nil {
				logger.WithField("session", s.ID).WithError(err).Error("failed to archive session")
			}
		}()
	}
}
