package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itinerary-microservice/internal/config"
	"github.com/itinerary-microservice/internal/infrastructure/mapbox"
	"github.com/itinerary-microservice/internal/pkg/logger"
	"github.com/itinerary-microservice/internal/repository/cache"
	"github.com/itinerary-microservice/internal/repository/postgres"
	redisRepo "github.com/itinerary-microservice/internal/repository/redis"
	"github.com/itinerary-microservice/internal/usecase"
	"github.com/itinerary-microservice/internal/worker"
	"github.com/itinerary-microservice/internal/worker/trip"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Trip Replan Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Health checks
	healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer healthCancel()

	if err := db.Health(healthCtx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(healthCtx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories
	tripRepo := postgres.NewTripRepository(db)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	mapboxClient := mapbox.NewMapboxClient(&cfg.Mapbox, log)

	// 7. Initialize planner sessions
	registry := usecase.NewPlannerRegistry(mapboxClient, mapboxClient, log, cfg.Planner)

	// 8. Initialize workers
	replanWorker := trip.NewReplanWorker(
		streamRepo,
		tripRepo,
		registry,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	// 9. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(replanWorker)

	// 10. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
