// internal/database/session.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/suitmatch/internal/cache"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id                   UUID PRIMARY KEY,
	owner_id             UUID,
	status               TEXT NOT NULL DEFAULT 'in_progress',
	end_reason           TEXT,
	discarded_count      INT NOT NULL DEFAULT 0,
	reshuffles_remaining INT NOT NULL DEFAULT 0,
	deal_attempts        INT NOT NULL DEFAULT 0,
	history              JSONB,
	start_time           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time             TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS session_actions (
	session_id     UUID NOT NULL REFERENCES sessions(id),
	action_index   INT NOT NULL,
	actor_user_id  UUID,
	action_type    TEXT NOT NULL,
	action_payload JSONB,
	created_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_id, action_index)
);
`

// EnsureSchema creates the archive tables if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SessionSummary is the final state of a session worth archiving.
type SessionSummary struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	EndReason           string
	DiscardedCount      int
	ReshufflesRemaining int
	DealAttempts        int
	History             interface{} // marshalled to JSON as-is
}

// RecordSession upserts the finished session row.
func RecordSession(ctx context.Context, pool *pgxpool.Pool, sum SessionSummary) error {
	history, err := json.Marshal(sum.History)
	if err != nil {
		return fmt.Errorf("failed to marshal session history: %w", err)
	}
	q := `
		INSERT INTO sessions (id, owner_id, status, end_reason, discarded_count, reshuffles_remaining, deal_attempts, history, end_time)
		VALUES ($1, $2, 'completed', $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			status = 'completed',
			end_reason = EXCLUDED.end_reason,
			discarded_count = EXCLUDED.discarded_count,
			reshuffles_remaining = EXCLUDED.reshuffles_remaining,
			deal_attempts = EXCLUDED.deal_attempts,
			history = EXCLUDED.history,
			end_time = NOW()
	`
	err = BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, sum.ID, sum.OwnerID, sum.EndReason, sum.DiscardedCount, sum.ReshufflesRemaining, sum.DealAttempts, history)
		return e
	})
	if err != nil {
		return fmt.Errorf("storing session %s: %w", sum.ID, err)
	}
	return nil
}

// InsertSessionActionTx inserts one action record, creating the session row on first sight.
func InsertSessionActionTx(ctx context.Context, tx pgx.Tx, rec cache.SessionActionRecord) error {
	upsertSessionQ := `
		INSERT INTO sessions (id, owner_id, status)
		VALUES ($1, $2, 'in_progress')
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertSessionQ, rec.SessionID, rec.ActorUserID); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	insertQ := `
		INSERT INTO session_actions (session_id, action_index, actor_user_id, action_type, action_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, to_timestamp($6 / 1000.0))
		ON CONFLICT (session_id, action_index) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertQ, rec.SessionID, rec.ActionIndex, rec.ActorUserID, rec.ActionType, payload, rec.Timestamp); err != nil {
		return fmt.Errorf("insert action: %w", err)
	}

	if rec.ActionType == "session_end" {
		endQ := `
			UPDATE sessions
			SET status = 'completed', end_time = NOW(), end_reason = $2
			WHERE id = $1 AND status = 'in_progress'
		`
		reason, _ := rec.ActionPayload["endReason"].(string)
		if _, err := tx.Exec(ctx, endQ, rec.SessionID, reason); err != nil {
			return fmt.Errorf("finalize session: %w", err)
		}
	}
	return nil
}

// MarkSessionAbandoned flags an in-progress session that went quiet.
func MarkSessionAbandoned(ctx context.Context, pool *pgxpool.Pool, sessionID uuid.UUID) error {
	return BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE sessions
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, e := tx.Exec(ctx, q, sessionID)
		return e
	})
}
