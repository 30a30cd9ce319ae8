package main

// @title Itinerary Microservice API
// @version 1.0.0
// @description Микросервис планирования маршрутов поездок. Геокодирует элементы маршрута вблизи назначения, строит оптимизированные дневные автомобильные маршруты с учётом трафика и агрегирует статистику поездки.
// @description
// @description Основные возможности:
// @description - Резолвинг назначения поездки в якорную координату
// @description - Фильтрация и геокодинг локаций активностей с радиусной проверкой
// @description - Оптимизация порядка объезда точек дня с фолбэком на исходный порядок
// @description - Классификация загруженности дорог по сегментам маршрута

// @contact.name API Support
// @contact.email support@itinerary-microservice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/itinerary-microservice/docs"
	"github.com/itinerary-microservice/internal/config"
	httpDelivery "github.com/itinerary-microservice/internal/delivery/http"
	"github.com/itinerary-microservice/internal/delivery/http/handler"
	"github.com/itinerary-microservice/internal/infrastructure/mapbox"
	"github.com/itinerary-microservice/internal/pkg/logger"
	"github.com/itinerary-microservice/internal/repository/postgres"
	"github.com/itinerary-microservice/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Itinerary Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

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

	healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.Health(healthCtx); err != nil {
		healthCancel()
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	healthCancel()

	// 4. Initialize Mapbox client
	mapboxClient := mapbox.NewMapboxClient(&cfg.Mapbox, log)
	log.Info("Mapbox client initialized",
		zap.String("base_url", cfg.Mapbox.BaseURL),
		zap.String("profile", cfg.Mapbox.DrivingProfile))

	// 5. Initialize repositories and planner sessions
	tripRepo := postgres.NewTripRepository(db)
	registry := usecase.NewPlannerRegistry(mapboxClient, mapboxClient, log, cfg.Planner)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP Handlers
	tripHandler := handler.NewTripHandler(registry, tripRepo, log)

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, tripHandler)

	log.Info("HTTP server initialized")

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
