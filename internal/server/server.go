// Package server boots the application: config, log sinks, database,
// migrations, cache, storage, the websocket hub, and the HTTP stack.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/aabhushan/app/repositories"
	"github.com/shashiranjanraj/aabhushan/app/routes"
	"github.com/shashiranjanraj/aabhushan/app/services"
	"github.com/shashiranjanraj/aabhushan/config"
	_ "github.com/shashiranjanraj/aabhushan/database/migrations"
	"github.com/shashiranjanraj/aabhushan/pkg/cache"
	"github.com/shashiranjanraj/aabhushan/pkg/database"
	"github.com/shashiranjanraj/aabhushan/pkg/event"
	"github.com/shashiranjanraj/aabhushan/pkg/logger"
	"github.com/shashiranjanraj/aabhushan/pkg/metrics"
	"github.com/shashiranjanraj/aabhushan/pkg/middleware"
	"github.com/shashiranjanraj/aabhushan/pkg/migration"
	"github.com/shashiranjanraj/aabhushan/pkg/reqid"
	"github.com/shashiranjanraj/aabhushan/pkg/router"
	"github.com/shashiranjanraj/aabhushan/pkg/storage"
	"github.com/shashiranjanraj/aabhushan/pkg/ws"
)

// NewRouter assembles the full middleware stack and routes over the given
// database handle. Exposed so tests can drive the real HTTP surface.
func NewRouter(hub *ws.Hub) *router.Router {
	userRepo := repositories.NewUserRepository(database.DB)
	productRepo := repositories.NewProductRepository(database.DB)

	authSvc := services.NewAuthService(userRepo)
	productSvc := services.NewProductService(productRepo)

	r := router.New()

	// Order matters: metrics observes everything including panics recovered
	// below it; the request logger needs the request id already set.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	routes.RegisterAPI(r, authSvc, productSvc, hub)
	return r
}

// wireHub subscribes the websocket hub to catalogue change events.
func wireHub(hub *ws.Hub) {
	broadcast := func(kind string) event.Handler {
		return func(payload any) {
			hub.BroadcastJSON(map[string]any{"event": kind, "data": payload})
		}
	}
	event.Listen(event.ProductCreated, broadcast("product.created"))
	event.Listen(event.ProductUpdated, broadcast("product.updated"))
	event.Listen(event.ProductDeleted, broadcast("product.deleted"))
}

// Start boots every subsystem and serves until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	var mongoSink *logger.MongoHandler
	if uri := config.LogMongoURI(); uri != "" {
		mh, err := logger.EnableMongoSink(uri, config.LogMongoDatabase(), config.LogMongoCollection())
		if err != nil {
			logger.Warn("server: mongo log sink disabled", "error", err)
		} else {
			mongoSink = mh
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}

	if err := migration.New(database.DB).Run(); err != nil {
		return err
	}

	// Redis only backs the rate limiter; its absence is not fatal.
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, rate limiting falls back to in-process buckets", "error", err)
	}

	storage.Connect()

	hub := ws.NewHub()
	go hub.Run()
	wireHub(hub)

	r := NewRouter(hub)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("server: shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	if mongoSink != nil {
		mongoSink.Close()
	}
	return err
}
