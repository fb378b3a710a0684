package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/attendance-backend/internal/model"
)

// RedisPublisher appends attendance events to a Redis list consumed by
// worker.EventWorker.
type RedisPublisher struct {
	rdb *redis.Client
	key string
}

// NewRedisPublisher creates a publisher pushing to the list at key.
func NewRedisPublisher(rdb *redis.Client, key string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, key: key}
}

// Publish implements service.EventPublisher.
func (p *RedisPublisher) Publish(ctx context.Context, ev *model.AttendanceEvent) error {
	raw, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := p.rdb.RPush(ctx, p.key, raw).Err(); err != nil {
		return fmt.Errorf("push %s: %w", p.key, err)
	}
	return nil
}

// Encode serialises an event for the queue.
func Encode(ev *model.AttendanceEvent) (string, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	return string(raw), nil
}

// Decode parses a queued event and checks the fields the audit table needs.
func Decode(raw string) (*model.AttendanceEvent, error) {
	var ev model.AttendanceEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if ev.ID == "" || ev.Kind == "" || ev.StudentID == 0 {
		return nil, fmt.Errorf("decode event: incomplete payload %q", raw)
	}
	return &ev, nil
}
