package notification

import (
	"context"
	"sync"
	"time"

	"github.com/ornge/orange-services/internal/domain/notification"
	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/metrics"
	"github.com/ornge/orange-services/pkg/logger"
)

// Consumer pops the next queued message, returning nil on timeout.
type Consumer interface {
	Consume(ctx context.Context, timeout time.Duration) (*notification.Message, error)
}

// Worker drains the notification queue and delivers each message. A message
// that fails delivery is logged and dropped; the queue itself is the retry
// boundary, not the worker.
type Worker struct {
	consumer Consumer
	svc      *Service
	log      *logger.Logger

	popTimeout time.Duration
	retryDelay time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewWorker constructs a queue worker.
func NewWorker(consumer Consumer, svc *Service, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.NewDefault("notification-worker")
	}
	return &Worker{
		consumer:   consumer,
		svc:        svc,
		log:        log,
		popTimeout: 5 * time.Second,
		retryDelay: 5 * time.Second,
	}
}

func (w *Worker) Name() string { return "notification-worker" }

// Start launches the consume loop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.run(loopCtx)
	w.log.Info("notification worker started")
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := w.consumer.Consume(ctx, w.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.RecordQueueConsume("error")
			w.log.WithError(err).Error("queue consume failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.retryDelay):
			}
			continue
		}
		if msg == nil {
			continue
		}

		if err := w.svc.Deliver(ctx, *msg); err != nil {
			// An owner without a profile or subscription is a skip, not
			// a failure.
			if svcerrors.IsNotFound(err) {
				metrics.RecordQueueConsume("skipped")
				w.log.WithField("client_id", msg.ClientID).Debug("no deliverable subscription")
				continue
			}
			metrics.RecordQueueConsume("failed")
			w.log.WithError(err).WithField("client_id", msg.ClientID).Error("notification delivery failed")
			continue
		}
		metrics.RecordQueueConsume("delivered")
	}
}
