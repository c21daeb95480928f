package queue

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ornge/orange-services/internal/domain/notification"
)

func TestMessageWireShape(t *testing.T) {
	msg := notification.Message{
		ClientID:  "client-1",
		Title:     "Hello",
		Body:      "World",
		Type:      "general",
		Timestamp: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]interface{}
	if err := json.Unmarshal(payload, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"client_id", "title", "body", "type", "timestamp"} {
		if _, ok := wire[key]; !ok {
			t.Fatalf("missing wire field %q in %s", key, payload)
		}
	}
}

func TestQueueRoundTripIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	name := "notification_queue_test_" + time.Now().Format("150405.000")
	q := NewWithClient(client, name)
	ctx := context.Background()

	if err := q.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() { client.Del(ctx, name) })

	sent := notification.Message{
		ClientID:  "client-1",
		Title:     "Hello",
		Body:      "World",
		Type:      "general",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	if err := q.Publish(ctx, sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := q.Consume(ctx, 2*time.Second)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got == nil {
		t.Fatal("expected a message, got timeout")
	}
	if got.ClientID != sent.ClientID || got.Title != sent.Title || !got.Timestamp.Equal(sent.Timestamp) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// Empty queue times out with no error.
	got, err = q.Consume(ctx, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("consume empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected timeout, got %+v", got)
	}
}
