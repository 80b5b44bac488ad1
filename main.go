package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"starboard/internal/common/logging"
	"starboard/internal/config"
	"starboard/internal/enrichment"
	"starboard/internal/handlers"
	"starboard/internal/middleware"
	"starboard/internal/ratelimit"
	"starboard/internal/redis"
	"starboard/internal/scheduler"
	"starboard/internal/storage"
	_ "starboard/internal/storage/postgres"
	_ "starboard/internal/storage/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.InitGlobalLogger()
	defer logging.MustSync()
	logger := logging.GetGlobalLogger()

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", err)
		os.Exit(1)
	}
	defer store.Close()

	// Redis is optional; without it rate limiting and the market cache are off
	var cache *redis.Client
	if cfg.RedisAddress != "" {
		cache, err = redis.NewClient(&redis.Config{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.GetRedisDB(),
			PoolSize: cfg.GetRedisPoolSize(),
		})
		if err != nil {
			logger.Error("Failed to connect to Redis", err)
			os.Exit(1)
		}
		defer cache.Close()
	}

	registry := enrichment.NewRegistry()
	if err := enrichment.RegisterDefaultSources(registry, cfg); err != nil {
		logger.Error("Failed to register enrichment sources", err)
		os.Exit(1)
	}

	enricher := enrichment.New(registry, logger,
		enrichment.NewAPIExecutor(cfg.GetRequestTimeout(), logger),
		enrichment.NewDatabaseExecutor(store, logger),
		enrichment.NewCalculationExecutor(logger),
	)

	refresher := scheduler.New(store, cache, logger)
	if err := refresher.Start(cfg.MarketRefreshSchedule); err != nil {
		logger.Error("Failed to start market refresh scheduler", err)
		os.Exit(1)
	}
	defer refresher.Stop()

	h := handlers.New(store, cache, cfg, enricher)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.CORSMiddleware(cfg.GetCORSOrigins()))
	router.Use(middleware.AuditMiddleware(store))

	if cache != nil && cfg.RateLimitEnabled {
		limiter := ratelimit.NewLimiter(cache, &ratelimit.Config{
			DefaultLimit:  cfg.GetRateLimitDefault(),
			DefaultWindow: cfg.GetRateLimitWindow(),
			Enabled:       true,
		})
		router.Use(limiter.HTTPMiddleware(ratelimit.IPBasedKey))
	}

	h.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			logging.Field{Key: "port", Value: cfg.Port},
			logging.Field{Key: "database", Value: cfg.DatabaseType},
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}
