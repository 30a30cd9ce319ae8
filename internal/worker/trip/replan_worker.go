package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	"github.com/itinerary-microservice/internal/usecase"
	"github.com/itinerary-microservice/internal/worker"
	"go.uber.org/zap"
)

const (
	maxBatchSize    = 20                     // максимум сообщений за раз
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
)

// ReplanWorker пересчитывает планы поездок по событиям об изменении маршрута.
// Несколько событий одной поездки в пачке схлопываются в один пересчёт.
type ReplanWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	tripRepo     repository.TripRepository
	registry     *usecase.PlannerRegistry
	consumerName string
	maxRetries   int
}

// NewReplanWorker создает новый ReplanWorker
func NewReplanWorker(
	streamRepo repository.StreamRepository,
	tripRepo repository.TripRepository,
	registry *usecase.PlannerRegistry,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *ReplanWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &ReplanWorker{
		BaseWorker:   worker.NewBaseWorker("trip-replan", consumerGroup, logger),
		streamRepo:   streamRepo,
		tripRepo:     tripRepo,
		registry:     registry,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start запускает воркер
func (w *ReplanWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ReplanWorker (batch mode)",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamItineraryChanged, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(time.Second) // пауза при ошибке
				continue
			}

			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch читает и обрабатывает пачку событий.
// Возвращает количество прочитанных сообщений.
func (w *ReplanWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamItineraryChanged,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil // очередь пуста
	}

	logger.Info("Processing batch",
		zap.Int("message_count", len(messages)))

	// Схлопываем события по поездке: один пересчёт на поездку за пачку
	tripIDs := make([]uuid.UUID, 0, len(messages))
	seen := make(map[uuid.UUID]struct{})
	messageIDs := make([]string, 0, len(messages))

	for _, msg := range messages {
		event, err := w.parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// ACK битое сообщение чтобы не застревало
			messageIDs = append(messageIDs, msg.ID)
			continue
		}

		messageIDs = append(messageIDs, msg.ID)
		if _, ok := seen[event.TripID]; ok {
			continue
		}
		seen[event.TripID] = struct{}{}
		tripIDs = append(tripIDs, event.TripID)
	}

	for _, tripID := range tripIDs {
		plannedEvent := w.replanTrip(ctx, tripID)

		if err := w.streamRepo.PublishToStream(ctx, domain.StreamTripPlanned, plannedEvent); err != nil {
			logger.Error("Failed to publish planned event",
				zap.String("trip_id", tripID.String()),
				zap.Error(err))
			// Продолжаем с остальными
		}
	}

	if err := w.streamRepo.AckMessages(ctx, domain.StreamItineraryChanged, w.ConsumerGroup(), messageIDs); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
		// Не критично - сообщения будут переобработаны
	}

	logger.Info("Batch processed successfully",
		zap.Int("messages", len(messages)),
		zap.Int("trips_replanned", len(tripIDs)))

	return len(messages), nil
}

// replanTrip загружает поездку и запускает полный пересчёт плана
func (w *ReplanWorker) replanTrip(ctx context.Context, tripID uuid.UUID) *domain.TripPlannedEvent {
	logger := w.Logger()

	trip, err := w.tripRepo.GetTrip(ctx, tripID)
	if err != nil {
		logger.Warn("Trip not found, skipping replan",
			zap.String("trip_id", tripID.String()),
			zap.Error(err))
		return &domain.TripPlannedEvent{TripID: tripID, Error: err.Error()}
	}

	activities, err := w.tripRepo.ListActivities(ctx, tripID)
	if err != nil {
		logger.Error("Failed to load itinerary items",
			zap.String("trip_id", tripID.String()),
			zap.Error(err))
		return &domain.TripPlannedEvent{TripID: tripID, Error: err.Error()}
	}

	plan, err := w.registry.Session(tripID).PlanTrip(ctx, trip, activities)
	if err != nil {
		logger.Error("Trip replan failed",
			zap.String("trip_id", tripID.String()),
			zap.Error(err))
		return &domain.TripPlannedEvent{TripID: tripID, Error: err.Error()}
	}

	return &domain.TripPlannedEvent{
		TripID:             tripID,
		Fingerprint:        plan.Fingerprint,
		GeocodedActivities: len(plan.GeocodedActivities),
		RoutedDays:         len(plan.DayRoutes),
		UnroutedDays:       len(plan.UnroutedDays),
		Stats:              &plan.Stats,
	}
}

// parseMessage парсит сообщение из стрима в ItineraryChangedEvent
func (w *ReplanWorker) parseMessage(msg domain.StreamMessage) (*domain.ItineraryChangedEvent, error) {
	data, ok := msg.Data["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var event domain.ItineraryChangedEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}
