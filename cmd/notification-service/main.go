// Command notification-service serves the enqueue endpoints and runs the
// queue worker that resolves push subscriptions and forwards payloads to the
// push relay.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ornge/orange-services/internal/config"
	"github.com/ornge/orange-services/internal/httpapi"
	"github.com/ornge/orange-services/internal/httpserver"
	"github.com/ornge/orange-services/internal/middleware"
	"github.com/ornge/orange-services/internal/platform/migrations"
	"github.com/ornge/orange-services/internal/push"
	"github.com/ornge/orange-services/internal/queue"
	notifsvc "github.com/ornge/orange-services/internal/services/notification"
	"github.com/ornge/orange-services/internal/storage/postgres"
	"github.com/ornge/orange-services/internal/system"
	"github.com/ornge/orange-services/pkg/logger"
)

const serviceName = "notification-service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		logger.NewDefault(serviceName).Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Logging)

	if cfg.Notify.PushRelayURL == "" {
		log.Fatalf("PUSH_RELAY_URL is required")
	}

	db, err := postgres.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.Apply(ctx, db.DB); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	q := queue.New(cfg.Redis)
	defer q.Close()
	if err := q.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis not reachable yet; queue operations will retry")
	}

	store := postgres.New(db)
	relay := push.NewRelay(cfg.Notify.PushRelayURL)
	service := notifsvc.New(store, q, relay, log.WithField("component", "notification"))
	worker := notifsvc.NewWorker(q, service, log.WithField("component", "worker"))

	manager := system.NewManager(log)
	if err := manager.Register(worker); err != nil {
		log.Fatalf("register worker: %v", err)
	}
	if err := manager.Start(ctx); err != nil {
		log.Fatalf("start services: %v", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	stopCleanup := limiter.StartCleanup(10 * time.Minute)
	defer stopCleanup()

	handler := httpapi.NewNotificationRouter(service, httpapi.Options{
		Service:   serviceName,
		Title:     "Orange Notification Service API",
		Log:       log,
		CORS:      middleware.NewCORS(cfg.CORSOrigins),
		RateLimit: limiter,
		HealthExtras: func() map[string]interface{} {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			status := "connected"
			if err := q.Ping(pingCtx); err != nil {
				status = "disconnected"
			}
			return map[string]interface{}{"queue": status}
		},
	})

	srv := httpserver.New(cfg.Server, log, handler)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Infof("%s listening on %s", serviceName, srv.Addr())

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := manager.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("stopping background services")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
}
