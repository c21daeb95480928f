// Command badal-service serves the fridge and food diary API and runs the
// fridge alert sweeper.
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
	"github.com/ornge/orange-services/internal/queue"
	foodsvc "github.com/ornge/orange-services/internal/services/food"
	fridgesvc "github.com/ornge/orange-services/internal/services/fridge"
	notifsvc "github.com/ornge/orange-services/internal/services/notification"
	"github.com/ornge/orange-services/internal/storage/postgres"
	"github.com/ornge/orange-services/internal/system"
	"github.com/ornge/orange-services/pkg/logger"
)

const serviceName = "badal-service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		logger.NewDefault(serviceName).Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Logging)

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

	store := postgres.New(db)
	fridgeService := fridgesvc.New(store, log.WithField("component", "fridge"))
	foodService := foodsvc.New(store, log.WithField("component", "food"))

	// Sweep alerts go through the notification service's enqueue endpoint
	// when one is configured, otherwise straight onto the queue.
	var sender notifsvc.Sender
	if cfg.Notify.EndpointURL != "" {
		sender = notifsvc.NewHTTPSender(cfg.Notify.EndpointURL)
	} else {
		q := queue.New(cfg.Redis)
		defer q.Close()
		sender = notifsvc.SenderFunc(q.Publish)
	}
	sweeper := notifsvc.NewSweeper(store, sender, cfg.Sweeps, log.WithField("component", "sweeper"))

	manager := system.NewManager(log)
	if err := manager.Register(sweeper); err != nil {
		log.Fatalf("register sweeper: %v", err)
	}
	if err := manager.Start(ctx); err != nil {
		log.Fatalf("start services: %v", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	stopCleanup := limiter.StartCleanup(10 * time.Minute)
	defer stopCleanup()

	handler := httpapi.NewBadalRouter(fridgeService, foodService, httpapi.Options{
		Service:   serviceName,
		Title:     "Orange Badal Service API",
		Log:       log,
		CORS:      middleware.NewCORS(cfg.CORSOrigins),
		RateLimit: limiter,
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
