// Package notification composes, queues and delivers Orange push
// notifications.
package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ornge/orange-services/internal/domain/notification"
	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/metrics"
	"github.com/ornge/orange-services/internal/push"
	"github.com/ornge/orange-services/internal/storage"
	"github.com/ornge/orange-services/pkg/logger"
)

// DefaultType tags notifications that do not declare their own type.
const DefaultType = "general"

// MaxBulkRecipients caps one bulk enqueue request.
const MaxBulkRecipients = 1000

// Publisher appends messages to the durable queue.
type Publisher interface {
	Publish(ctx context.Context, msg notification.Message) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, msg notification.Message) error

func (f PublisherFunc) Publish(ctx context.Context, msg notification.Message) error {
	return f(ctx, msg)
}

// PushRelay delivers one resolved web-push payload.
type PushRelay interface {
	Send(ctx context.Context, payload push.Payload) error
}

// BulkResult tallies a bulk enqueue.
type BulkResult struct {
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []BulkError `json:"errors,omitempty"`
}

// BulkError records one recipient that could not be queued.
type BulkError struct {
	ClientID string `json:"client_id"`
	Error    string `json:"error"`
}

// Service queues notifications and resolves them into web pushes.
type Service struct {
	users     storage.UserStore
	publisher Publisher
	relay     PushRelay
	log       *logger.Logger
	now       func() time.Time
}

// New constructs a notification service.
func New(users storage.UserStore, publisher Publisher, relay PushRelay, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("notification")
	}
	return &Service{
		users:     users,
		publisher: publisher,
		relay:     relay,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the service clock for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) normalize(msg notification.Message) (notification.Message, error) {
	if msg.ClientID == "" || msg.Title == "" || msg.Body == "" {
		return notification.Message{}, svcerrors.Validation("required fields: client_id, title, body")
	}
	if msg.Type == "" {
		msg.Type = DefaultType
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now().UTC()
	}
	return msg, nil
}

// Enqueue validates one notification and appends it to the queue.
func (s *Service) Enqueue(ctx context.Context, msg notification.Message) error {
	msg, err := s.normalize(msg)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		return svcerrors.Internal("failed to queue notification", err)
	}
	return nil
}

// EnqueueBulk queues the same notification for up to MaxBulkRecipients
// owners, tallying per-recipient outcomes.
func (s *Service) EnqueueBulk(ctx context.Context, clientIDs []string, title, body, msgType string) (BulkResult, error) {
	if len(clientIDs) == 0 {
		return BulkResult{}, svcerrors.Validation("client_ids must be a non-empty array")
	}
	if title == "" || body == "" {
		return BulkResult{}, svcerrors.Validation("required fields: title, body")
	}
	if len(clientIDs) > MaxBulkRecipients {
		return BulkResult{}, svcerrors.Validation(fmt.Sprintf("maximum %d client_ids allowed per request", MaxBulkRecipients))
	}

	var result BulkResult
	for _, clientID := range clientIDs {
		err := s.Enqueue(ctx, notification.Message{
			ClientID: clientID,
			Title:    title,
			Body:     body,
			Type:     msgType,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkError{ClientID: clientID, Error: err.Error()})
			continue
		}
		result.Successful++
	}
	return result, nil
}

// Deliver resolves the owner's push subscription and forwards the payload to
// the relay. A dead subscription (410, or 404 from some push services) is
// cleared so the owner stops receiving send attempts.
func (s *Service) Deliver(ctx context.Context, msg notification.Message) error {
	msg, err := s.normalize(msg)
	if err != nil {
		return err
	}

	subscription, err := s.users.GetSubscription(ctx, msg.ClientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return svcerrors.NotFound("user not found")
		}
		return svcerrors.Internal("error fetching push subscription", err)
	}
	if len(subscription) == 0 || string(subscription) == "null" {
		return svcerrors.NotFound("user has no push subscription")
	}
	if !json.Valid(subscription) {
		return svcerrors.Internal("stored push subscription is not valid JSON", nil)
	}

	err = s.relay.Send(ctx, push.Payload{
		Subscription: subscription,
		Title:        msg.Title,
		Body:         msg.Body,
		Tag:          msg.Type,
	})
	if err != nil {
		metrics.RecordNotification("failed")
		if push.IsGone(err) {
			s.log.WithField("client_id", msg.ClientID).Info("clearing dead push subscription")
			if clearErr := s.users.ClearSubscription(ctx, msg.ClientID); clearErr != nil {
				s.log.WithError(clearErr).WithField("client_id", msg.ClientID).Error("failed to clear push subscription")
			}
		}
		return svcerrors.Internal("failed to send push notification", err)
	}

	metrics.RecordNotification("sent")
	return nil
}
