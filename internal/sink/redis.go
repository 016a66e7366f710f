package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisEvents appends one stream entry {data: <outcome json>} per request.
type RedisEvents struct {
	client streamClient
	stream string
	maxLen int64
}

// NewRedisEvents connects to redisURL and verifies the connection.
func NewRedisEvents(redisURL, stream string) (*RedisEvents, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisEvents(c, stream), nil
}

func newRedisEvents(c streamClient, stream string) *RedisEvents {
	return &RedisEvents{client: c, stream: stream, maxLen: 100000}
}

func (r *RedisEvents) Name() string { return "redis" }

func (r *RedisEvents) Record(ctx context.Context, o Outcome) error {
	payload, err := json.Marshal(event{Outcome: o, DurationMS: o.Duration.Milliseconds()})
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{"data": string(payload)},
	}).Err()
}

// Ping checks redis connectivity.
func (r *RedisEvents) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *RedisEvents) Close() error { return r.client.Close() }

type event struct {
	Outcome
	DurationMS int64 `json:"duration_ms"`
}
