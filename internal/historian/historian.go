// Package historian drains session action records from the Redis queue and archives them in PostgreSQL.
package historian

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/suitmatch/internal/cache"
	"github.com/jason-s-yu/suitmatch/internal/config"
	"github.com/jason-s-yu/suitmatch/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service batches queue entries into database transactions and marks sessions abandoned
// after a period without activity.
type Service struct {
	redisClient  *redis.Client
	queue        string
	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration // duration until a session is marked "abandoned"
	lastActivity sync.Map      // map[uuid.UUID]time.Time
	logger       logrus.FieldLogger

	batchMu sync.Mutex
	batch   []cache.SessionActionRecord

	// persist writes one batch; abandon flags one session. Both default to the database package.
	persist func(ctx context.Context, batch []cache.SessionActionRecord) error
	abandon func(ctx context.Context, sessionID uuid.UUID) error
}

// New builds a Service that reads from rdb and writes to pool.
func New(cfg config.Config, rdb *redis.Client, pool *pgxpool.Pool, logger logrus.FieldLogger) *Service {
	hs := &Service{
		redisClient: rdb,
		queue:       cfg.QueueName,
		batchSize:   cfg.HistorianBatchSize,
		flushDelay:  cfg.HistorianFlushDelay,
		inactivity:  cfg.IdleTimeout,
		logger:      logger,
		batch:       make([]cache.SessionActionRecord, 0, cfg.HistorianBatchSize),
	}
	hs.persist = func(ctx context.Context, batch []cache.SessionActionRecord) error {
		return database.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			for _, rec := range batch {
				if err := database.InsertSessionActionTx(ctx, tx, rec); err != nil {
					return fmt.Errorf("InsertSessionActionTx: %w", err)
				}
			}
			return nil
		})
	}
	hs.abandon = func(ctx context.Context, sessionID uuid.UUID) error {
		return database.MarkSessionAbandoned(ctx, pool, sessionID)
	}
	return hs
}

// Run starts the flush and inactivity loops and reads the queue until ctx is cancelled.
// The pending batch is flushed before returning.
func (hs *Service) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hs.flushLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		hs.inactivityLoop(ctx)
	}()

	hs.logger.Info("suitmatch-historian service started.")
	hs.readRedisLoop(ctx)
	wg.Wait()

	// ctx is done by now; give the last flush its own deadline.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := hs.Flush(flushCtx)
	hs.logger.Info("suitmatch-historian shutting down.")
	return err
}

// readRedisLoop continuously uses BLPop to retrieve messages from the queue.
func (hs *Service) readRedisLoop(ctx context.Context) {
	for ctx.Err() == nil {
		// short BLPop timeout so cancellation is noticed
		res, err := hs.redisClient.BLPop(ctx, 3*time.Second, hs.queue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				hs.logger.WithError(err).Error("BLPop failed")
			}
			continue
		}
		if len(res) < 2 {
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		hs.Ingest(ctx, []byte(res[1]))
	}
}

// Ingest decodes one queue entry and adds it to the batch.
func (hs *Service) Ingest(ctx context.Context, payload []byte) {
	rec, err := cache.DecodeRecord(payload)
	if err != nil {
		hs.logger.WithError(err).Warn("dropping queue entry")
		return
	}
	hs.lastActivity.Store(rec.SessionID, time.Now())
	if rec.ActionType == "session_end" {
		hs.lastActivity.Delete(rec.SessionID)
	}
	hs.appendToBatch(ctx, rec)
}

// appendToBatch adds a record to the in-memory batch and flushes if the threshold is reached.
func (hs *Service) appendToBatch(ctx context.Context, rec cache.SessionActionRecord) {
	hs.batchMu.Lock()
	hs.batch = append(hs.batch, rec)
	full := len(hs.batch) >= hs.batchSize
	hs.batchMu.Unlock()

	if full {
		if err := hs.Flush(ctx); err != nil {
			hs.logger.WithError(err).Error("flush failed")
		}
	}
}

// Flush writes the pending batch in one transaction. On failure the batch is kept for the next attempt.
func (hs *Service) Flush(ctx context.Context) error {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return nil
	}
	pending := hs.batch
	hs.batch = make([]cache.SessionActionRecord, 0, hs.batchSize)
	hs.batchMu.Unlock()

	if err := hs.persist(ctx, pending); err != nil {
		hs.batchMu.Lock()
		hs.batch = append(pending, hs.batch...)
		hs.batchMu.Unlock()
		return fmt.Errorf("flushing %d actions: %w", len(pending), err)
	}
	hs.logger.Debugf("Flushed %d actions to DB.", len(pending))
	return nil
}

// Pending returns the number of records waiting to be flushed.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

func (hs *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := hs.Flush(ctx); err != nil {
				hs.logger.WithError(err).Error("periodic flush failed")
			}
		}
	}
}

func (hs *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			hs.checkInactivity(ctx, now)
		}
	}
}

// checkInactivity marks every session idle for longer than the inactivity threshold as abandoned.
func (hs *Service) checkInactivity(ctx context.Context, now time.Time) {
	hs.lastActivity.Range(func(key, val interface{}) bool {
		sessionID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= hs.inactivity {
			return true
		}
		if err := hs.abandon(ctx, sessionID); err != nil {
			hs.logger.WithField("session", sessionID).WithError(err).Error("failed to mark session abandoned")
			return true
		}
		hs.logger.WithField("session", sessionID).Info("marked session abandoned due to inactivity")
		hs.lastActivity.Delete(sessionID)
		return true
	})
}
