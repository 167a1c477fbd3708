// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for session action logs.
const DefaultQueueName = "suitmatch_actions"

// SessionActionRecord is one applied or rejected transition, as consumed by the historian.
type SessionActionRecord struct {
	SessionID     uuid.UUID              `json:"session_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorUserID   uuid.UUID              `json:"actor_user_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client from cfg.
func ConnectRedis(cfg config.Config) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	return nil
}

// EncodeRecord serializes a record the way it is stored on the queue.
func EncodeRecord(record SessionActionRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SessionActionRecord: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a queue entry.
func DecodeRecord(data []byte) (SessionActionRecord, error) {
	var rec SessionActionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("invalid action record: %w", err)
	}
	return rec, nil
}

// PublishSessionAction pushes the record onto queue using client.
func PublishSessionAction(ctx context.Context, client *redis.Client, queue string, record SessionActionRecord) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}
	if err := client.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queue, err)
	}
	return nil
}

// Publisher pushes action records to the historian queue without blocking the caller.
type Publisher struct {
	client *redis.Client
	queue  string
	logger logrus.FieldLogger
}

func NewPublisher(client *redis.Client, queue string, logger logrus.FieldLogger) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{client: client, queue: queue, logger: logger}
}

// Record publishes rec asynchronously. Failures are logged and dropped.
func (p *Publisher) Record(rec SessionActionRecord) {
	if p == nil || p.client == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := PublishSessionAction(ctx, p.client, p.queue, rec); err != nil {
			p.logger.WithFields(logrus.Fields{
				"session": rec.SessionID,
				"index":   rec.ActionIndex,
			}).WithError(err).Warn("failed to publish session action")
		}
	}()
}
