package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/suitmatch/internal/config"
	log "github.com/sirupsen/logrus"
)

// DB is the global connection pool. It stays nil when no database is configured.
var DB *pgxpool.Pool

// ErrNoDatabase is returned by ConnectDB when no connection string is configured.
var ErrNoDatabase = errors.New("no database configured")

// ConnectDB opens the pool described by cfg.DatabaseURL and pings it.
func ConnectDB(ctx context.Context, cfg config.Config) error {
	if cfg.DatabaseURL == "" {
		return ErrNoDatabase
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("db ping error: %w", err)
	}

	DB = pool
	log.Infof("Connected to database at %s", poolCfg.ConnConfig.Host)
	return nil
}

// BeginTxFunc starts a transaction on pool, calls f with it, and commits or rolls back as needed.
func BeginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}
