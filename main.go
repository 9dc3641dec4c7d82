package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"views-api/internal/config"
	"views-api/internal/fingerprint"
	"views-api/internal/handler"
	"views-api/internal/middleware"
	"views-api/internal/repository"
	"views-api/internal/service"
	"views-api/pkg/database"
	"views-api/pkg/logger"
	"views-api/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"backend":     cfg.StorageBackend,
	}).Info("Starting views-api server")

	if cfg.IPSalt == "" {
		// Recording requests will fail with a configuration error until the
		// salt is set; read-only count queries keep working.
		log.Warn("IP_SALT is not set, visit recording is disabled")
	}

	ctx := context.Background()

	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage backend")
	}

	counterService := service.NewCounterService(store, fingerprint.New(cfg.IPSalt), log)

	router := setupRouter(cfg, log, counterService, store)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server listening on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server")
	}
	closeStore()

	log.Info("Application shutdown complete")
}

// newStore builds the configured storage strategy. Both satisfy the same
// VisitStore contract; nothing downstream knows which one is live.
func newStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.VisitStore, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewPostgresStore(db), db.Close, nil

	case config.BackendRedis:
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Error("Failed to close Redis connection")
			}
		}
		return repository.NewRedisStore(client), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// setupRouter configures and returns the HTTP router
func setupRouter(cfg *config.Config, log *logger.Logger, counterService *service.CounterService, store repository.VisitStore) *chi.Mux {
	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = cfg.AllowedOrigins
	}

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	countHandler := handler.NewCountHandler(counterService, log)
	healthHandler := handler.NewHealthHandler(store, log)

	r.Get("/health", healthHandler.Check)
	countHandler.RegisterRoutes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}
