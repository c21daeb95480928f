// Command user-service serves Orange user profiles and push subscriptions.
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
	usersvc "github.com/ornge/orange-services/internal/services/user"
	"github.com/ornge/orange-services/internal/storage/postgres"
	"github.com/ornge/orange-services/pkg/logger"
)

const serviceName = "user-service"

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

	userService := usersvc.New(postgres.New(db), log.WithField("component", "user"))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	stopCleanup := limiter.StartCleanup(10 * time.Minute)
	defer stopCleanup()

	handler := httpapi.NewUserRouter(userService, httpapi.Options{
		Service:   serviceName,
		Title:     "Orange User Service API",
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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
}
