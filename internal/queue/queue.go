// Package queue provides the durable notification queue backed by a Redis
// list. Producers LPUSH JSON-encoded messages; the worker BRPOPs them so
// delivery survives a notification-service restart.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ornge/orange-services/internal/config"
	"github.com/ornge/orange-services/internal/domain/notification"
	"github.com/ornge/orange-services/internal/metrics"
)

// Queue is a Redis-list notification queue.
type Queue struct {
	client *redis.Client
	name   string
}

// New connects a queue from config. The connection is lazy; Ping checks it.
func New(cfg config.RedisConfig) *Queue {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Queue{client: client, name: cfg.Queue}
}

// NewWithClient wraps an existing client; tests use it with miniredis-style
// fakes or a local instance.
func NewWithClient(client *redis.Client, name string) *Queue {
	return &Queue{client: client, name: name}
}

// Ping verifies the Redis connection.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (q *Queue) Close() error {
	return q.client.Close()
}

// Publish appends one message to the queue.
func (q *Queue) Publish(ctx context.Context, msg notification.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding queue message: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("pushing to queue %s: %w", q.name, err)
	}
	metrics.RecordQueuePublish()
	return nil
}

// Consume blocks up to timeout for the next message. A nil message with a
// nil error means the wait timed out and the caller should poll again.
func (q *Queue) Consume(ctx context.Context, timeout time.Duration) (*notification.Message, error) {
	result, err := q.client.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("popping from queue %s: %w", q.name, err)
	}
	// BRPOP answers [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(result))
	}

	var msg notification.Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("decoding queue message: %w", err)
	}
	return &msg, nil
}
