package storage

import (
	"context"
	"fmt"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisLog implements ports.ReportLog as a Redis stream. Entry IDs are
// server-assigned timestamps, so the stream is ordered by arrival.
type RedisLog struct {
	client *redis.Client
	stream string
	// maxLen approximately caps the stream; 0 keeps every entry
	maxLen int64
}

// NewRedisLog connects to addr and verifies the connection
func NewRedisLog(ctx context.Context, addr, stream string, maxLen int64) (*RedisLog, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisLog{client: client, stream: stream, maxLen: maxLen}, nil
}

// Append adds one report to the stream
func (l *RedisLog) Append(ctx context.Context, rec domain.ReportRecord) error {
	e, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: l.stream,
		ID:     "*",
		Values: e.streamValues(),
	}
	if l.maxLen > 0 {
		args.MaxLen = l.maxLen
		args.Approx = true
	}
	if err := l.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append report %s to %s: %w", e.ID, l.stream, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisLog) Close() error {
	return l.client.Close()
}
