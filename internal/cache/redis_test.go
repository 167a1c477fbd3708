// internal/cache/redis_test.go
package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEncoding(t *testing.T) {
	rec := SessionActionRecord{
		SessionID:     uuid.New(),
		ActionIndex:   4,
		ActorUserID:   uuid.New(),
		ActionType:    "action_play",
		ActionPayload: map[string]interface{}{"index": float64(2), "applied": true},
		Timestamp:     1700000000000,
	}
	data, err := EncodeRecord(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session_id"`)

	got, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = DecodeRecord([]byte("{"))
	assert.Error(t, err)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() { p.Record(SessionActionRecord{}) })

	p = NewPublisher(nil, "", nil)
	assert.Equal(t, DefaultQueueName, p.queue)
	assert.NotPanics(t, func() { p.Record(SessionActionRecord{}) })
}
