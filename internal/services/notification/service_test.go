package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	notifdomain "github.com/ornge/orange-services/internal/domain/notification"
	userdomain "github.com/ornge/orange-services/internal/domain/user"
	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/push"
	"github.com/ornge/orange-services/internal/storage/memory"
)

type captureRelay struct {
	mu       sync.Mutex
	payloads []push.Payload
	err      error
}

func (c *captureRelay) Send(ctx context.Context, payload push.Payload) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *captureRelay) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func subscribedUser(store *memory.Store, clientID string) {
	store.AddUser(userdomain.User{
		ClientID:         clientID,
		PushSubscription: json.RawMessage(`{"endpoint":"https://push.example/` + clientID + `"}`),
	})
}

func TestEnqueueValidatesAndStamps(t *testing.T) {
	var published []notifdomain.Message
	publisher := PublisherFunc(func(ctx context.Context, msg notifdomain.Message) error {
		published = append(published, msg)
		return nil
	})

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := New(memory.New(), publisher, &captureRelay{}, nil).WithClock(func() time.Time { return now })

	err := svc.Enqueue(context.Background(), notifdomain.Message{
		ClientID: "client-1",
		Title:    "Hello",
		Body:     "World",
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(published))
	}
	msg := published[0]
	if msg.Type != DefaultType {
		t.Fatalf("expected default type, got %q", msg.Type)
	}
	if !msg.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %v, got %v", now, msg.Timestamp)
	}

	err = svc.Enqueue(context.Background(), notifdomain.Message{ClientID: "client-1", Title: "no body"})
	if svcerrors.Status(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing body, got %v", err)
	}
}

func TestEnqueueBulkTally(t *testing.T) {
	publisher := PublisherFunc(func(ctx context.Context, msg notifdomain.Message) error {
		if msg.ClientID == "client-bad" {
			return errors.New("queue unavailable")
		}
		return nil
	})
	svc := New(memory.New(), publisher, &captureRelay{}, nil)

	result, err := svc.EnqueueBulk(context.Background(), []string{"client-1", "client-bad", "client-2"}, "Hi", "there", "")
	if err != nil {
		t.Fatalf("enqueue bulk: %v", err)
	}
	if result.Successful != 2 || result.Failed != 1 {
		t.Fatalf("unexpected tally: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].ClientID != "client-bad" {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}

	if _, err := svc.EnqueueBulk(context.Background(), nil, "Hi", "there", ""); err == nil {
		t.Fatal("expected validation error for empty recipients")
	}

	tooMany := make([]string, MaxBulkRecipients+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("client-%d", i)
	}
	if _, err := svc.EnqueueBulk(context.Background(), tooMany, "Hi", "there", ""); err == nil {
		t.Fatal("expected validation error for oversized batch")
	}
}

func TestDeliverResolvesSubscription(t *testing.T) {
	store := memory.New()
	subscribedUser(store, "client-1")
	relay := &captureRelay{}
	svc := New(store, nil, relay, nil)

	err := svc.Deliver(context.Background(), notifdomain.Message{
		ClientID: "client-1",
		Title:    "Hello",
		Body:     "World",
		Type:     "fridge_expiring",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(relay.payloads) != 1 {
		t.Fatalf("expected 1 push, got %d", len(relay.payloads))
	}
	payload := relay.payloads[0]
	if payload.Title != "Hello" || payload.Tag != "fridge_expiring" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if string(payload.Subscription) != `{"endpoint":"https://push.example/client-1"}` {
		t.Fatalf("unexpected subscription: %s", payload.Subscription)
	}
}

func TestDeliverMissingUserAndSubscription(t *testing.T) {
	store := memory.New()
	store.AddUser(userdomain.User{ClientID: "client-nosub"})
	svc := New(store, nil, &captureRelay{}, nil)

	err := svc.Deliver(context.Background(), notifdomain.Message{ClientID: "missing", Title: "t", Body: "b"})
	if !svcerrors.IsNotFound(err) {
		t.Fatalf("expected not found for missing user, got %v", err)
	}

	err = svc.Deliver(context.Background(), notifdomain.Message{ClientID: "client-nosub", Title: "t", Body: "b"})
	if !svcerrors.IsNotFound(err) {
		t.Fatalf("expected not found for missing subscription, got %v", err)
	}
}

func TestDeliverClearsDeadSubscription(t *testing.T) {
	store := memory.New()
	subscribedUser(store, "client-1")
	relay := &captureRelay{err: &push.StatusError{StatusCode: http.StatusGone}}
	svc := New(store, nil, relay, nil)

	err := svc.Deliver(context.Background(), notifdomain.Message{ClientID: "client-1", Title: "t", Body: "b"})
	if err == nil {
		t.Fatal("expected delivery error")
	}

	sub, err := store.GetSubscription(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if len(sub) != 0 {
		t.Fatalf("expected subscription cleared, got %s", sub)
	}
}

func TestDeliverKeepsSubscriptionOnTransientFailure(t *testing.T) {
	store := memory.New()
	subscribedUser(store, "client-1")
	relay := &captureRelay{err: &push.StatusError{StatusCode: http.StatusBadGateway}}
	svc := New(store, nil, relay, nil)

	if err := svc.Deliver(context.Background(), notifdomain.Message{ClientID: "client-1", Title: "t", Body: "b"}); err == nil {
		t.Fatal("expected delivery error")
	}

	sub, err := store.GetSubscription(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if len(sub) == 0 {
		t.Fatal("subscription should survive a transient relay failure")
	}
}

type stubConsumer struct {
	msgs chan *notifdomain.Message
}

func (s *stubConsumer) Consume(ctx context.Context, timeout time.Duration) (*notifdomain.Message, error) {
	select {
	case msg := <-s.msgs:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, nil
	}
}

func TestWorkerDeliversQueuedMessages(t *testing.T) {
	store := memory.New()
	subscribedUser(store, "client-1")
	relay := &captureRelay{}
	svc := New(store, nil, relay, nil)

	consumer := &stubConsumer{msgs: make(chan *notifdomain.Message, 1)}
	worker := NewWorker(consumer, svc, nil)

	if err := worker.Start(context.Background()); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	consumer.msgs <- &notifdomain.Message{ClientID: "client-1", Title: "Hello", Body: "World"}

	deadline := time.After(2 * time.Second)
	for relay.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("message was not delivered in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := worker.Stop(stopCtx); err != nil {
		t.Fatalf("stop worker: %v", err)
	}
}
