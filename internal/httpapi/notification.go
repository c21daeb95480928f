package httpapi

import (
	"net/http"

	notifdomain "github.com/ornge/orange-services/internal/domain/notification"
	notifsvc "github.com/ornge/orange-services/internal/services/notification"
	"github.com/ornge/orange-services/pkg/logger"
)

// NotificationAPI serves the enqueue and direct-send endpoints.
type NotificationAPI struct {
	svc *notifsvc.Service
	log *logger.Logger
}

// NewNotificationRouter mounts the notification-service HTTP surface.
func NewNotificationRouter(svc *notifsvc.Service, opts Options) http.Handler {
	r := newRouter(&opts)
	n := &NotificationAPI{svc: svc, log: opts.Log}

	r.HandleFunc("/api/send-notification", n.send).Methods(http.MethodPost)
	r.HandleFunc("/api/send-bulk-notifications", n.sendBulk).Methods(http.MethodPost)
	r.HandleFunc("/api/send-notification-direct", n.sendDirect).Methods(http.MethodPost)

	return finalize(r, opts)
}

type sendRequest struct {
	ClientID string `json:"client_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Type     string `json:"type"`
}

func (n *NotificationAPI) send(w http.ResponseWriter, r *http.Request) {
	var body sendRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, n.log, err)
		return
	}
	if body.ClientID == "" || body.Title == "" || body.Body == "" {
		fail(w, http.StatusBadRequest, "Missing required fields: client_id, title, body")
		return
	}

	err := n.svc.Enqueue(r.Context(), notifdomain.Message{
		ClientID: body.ClientID,
		Title:    body.Title,
		Body:     body.Body,
		Type:     body.Type,
	})
	if err != nil {
		writeError(w, n.log, err)
		return
	}
	ok(w, map[string]interface{}{
		"message":   "Notification queued successfully",
		"client_id": body.ClientID,
	})
}

type sendBulkRequest struct {
	ClientIDs []string `json:"client_ids"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Type      string   `json:"type"`
}

func (n *NotificationAPI) sendBulk(w http.ResponseWriter, r *http.Request) {
	var body sendBulkRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, n.log, err)
		return
	}

	result, err := n.svc.EnqueueBulk(r.Context(), body.ClientIDs, body.Title, body.Body, body.Type)
	if err != nil {
		writeError(w, n.log, err)
		return
	}
	ok(w, map[string]interface{}{
		"message": "Bulk notifications processed",
		"total":   len(body.ClientIDs),
		"results": result,
	})
}

func (n *NotificationAPI) sendDirect(w http.ResponseWriter, r *http.Request) {
	var body sendRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, n.log, err)
		return
	}
	if body.ClientID == "" || body.Title == "" || body.Body == "" {
		fail(w, http.StatusBadRequest, "Missing required fields: client_id, title, body")
		return
	}

	err := n.svc.Deliver(r.Context(), notifdomain.Message{
		ClientID: body.ClientID,
		Title:    body.Title,
		Body:     body.Body,
		Type:     body.Type,
	})
	if err != nil {
		writeError(w, n.log, err)
		return
	}
	ok(w, map[string]interface{}{
		"message":   "Push notification sent directly",
		"client_id": body.ClientID,
	})
}
