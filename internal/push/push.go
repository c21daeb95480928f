// Package push forwards resolved web-push payloads to the push relay.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Payload is the web-push envelope delivered to one subscription.
type Payload struct {
	Subscription json.RawMessage `json:"subscription"`
	Title        string          `json:"title"`
	Body         string          `json:"body"`
	Tag          string          `json:"tag,omitempty"`
}

// StatusError reports a non-2xx relay response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push relay returned status %d", e.StatusCode)
}

// IsGone reports whether the error means the subscription is dead and should
// be discarded. Push services answer 410 for expired subscriptions and some
// answer 404.
func IsGone(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusGone || se.StatusCode == http.StatusNotFound
}

// Relay is an HTTP client for the push relay service.
type Relay struct {
	url    string
	client *http.Client
}

// NewRelay constructs a relay client.
func NewRelay(url string) *Relay {
	return &Relay{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one payload to the relay.
func (r *Relay) Send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting push payload: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
