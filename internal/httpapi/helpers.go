// Package httpapi mounts the HTTP surface of each Orange service: routing,
// request decoding, the success/error envelope and the shared info, health
// and metrics endpoints.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/metrics"
	"github.com/ornge/orange-services/internal/middleware"
	"github.com/ornge/orange-services/pkg/logger"
)

// Options carries the cross-cutting pieces every router shares.
type Options struct {
	Service   string
	Title     string
	Log       *logger.Logger
	CORS      *middleware.CORS
	RateLimit *middleware.RateLimiter
	// HealthExtras contributes service-specific health fields, e.g. queue
	// connectivity.
	HealthExtras func() map[string]interface{}
}

// newRouter builds a mux with the shared middleware and the info, health and
// metrics endpoints mounted.
func newRouter(opts *Options) *mux.Router {
	if opts.Log == nil {
		opts.Log = logger.NewDefault(opts.Service)
	}
	r := mux.NewRouter()
	r.Use(middleware.Logging(opts.Log))
	r.Use(middleware.Metrics(opts.Service))

	started := time.Now()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":   opts.Title,
			"version":   "1.0.0",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		body := map[string]interface{}{
			"status":    "healthy",
			"service":   opts.Service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    int(time.Since(started).Seconds()),
		}
		if opts.HealthExtras != nil {
			for k, v := range opts.HealthExtras() {
				body[k] = v
			}
		}
		writeJSON(w, http.StatusOK, body)
	}).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fail(w, http.StatusNotFound, "Route not found")
	})

	return r
}

// finalize wraps the router with the outermost middleware.
func finalize(r *mux.Router, opts Options) http.Handler {
	var h http.Handler = r
	if opts.RateLimit != nil {
		h = opts.RateLimit.Handler(h)
	}
	if opts.CORS != nil {
		h = opts.CORS.Handler(h)
	}
	return h
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are gone; nothing left to do but note it.
		logger.NewDefault("httpapi").WithError(err).Error("failed to encode response")
	}
}

// ok writes the success envelope with extra top-level fields.
func ok(w http.ResponseWriter, fields map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// fail writes the error envelope.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeError maps a service error onto the envelope. Internal details never
// reach the caller.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := svcerrors.Status(err)
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.WithError(err).Error("request failed")
		}
		fail(w, status, "Internal server error")
		return
	}
	fail(w, status, err.Error())
}

// decodeJSON decodes a request body. Unknown fields are tolerated; field
// validation belongs to the services.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return svcerrors.Validation("invalid JSON body")
	}
	return nil
}

// requireClientID extracts the caller identity or writes the error envelope
// with the given status (400 on resource services, 401 where the identity is
// an authentication concern).
func requireClientID(w http.ResponseWriter, r *http.Request, status int) (string, bool) {
	clientID := middleware.ClientID(r)
	if clientID == "" {
		fail(w, status, "Client ID is required")
		return "", false
	}
	return clientID, true
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
