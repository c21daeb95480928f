// Package notification holds the queued notification message shape.
package notification

import "time"

// Message is the durable payload placed on the notification queue and posted
// to the enqueue endpoint.
type Message struct {
	ClientID  string    `json:"client_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      string    `json:"type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
