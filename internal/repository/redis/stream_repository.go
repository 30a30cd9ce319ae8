package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type streamRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStreamRepository создает новый экземпляр StreamRepository
func NewStreamRepository(client *redis.Client, logger *zap.Logger) repository.StreamRepository {
	return &streamRepository{
		client: client,
		logger: logger,
	}
}

// CreateConsumerGroup создаёт consumer group для стрима
func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	// Группа читает только новые сообщения ("$"); MKSTREAM создаст стрим,
	// если его ещё нет
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		// BUSYGROUP - группа уже существует
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			r.logger.Debug("Consumer group already exists",
				zap.String("stream", stream),
				zap.String("group", group))
			return nil
		}
		r.logger.Error("Failed to create consumer group",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.Info("Consumer group created successfully",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

// ConsumeBatch читает до count непрочитанных сообщений в неблокирующем режиме
func (r *streamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	result, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    int64(count),
		Block:    -1, // не блокируемся, пустая очередь - не ошибка
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to read from stream",
			zap.String("stream", stream),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	var messages []domain.StreamMessage
	for _, streamResult := range result {
		for _, msg := range streamResult.Messages {
			messages = append(messages, domain.StreamMessage{
				ID:   msg.ID,
				Data: msg.Values,
			})
		}
	}

	r.logger.Debug("Batch consumed from stream",
		zap.String("stream", stream),
		zap.Int("count", len(messages)))

	return messages, nil
}

// AckMessages подтверждает обработку пачки сообщений
func (r *streamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	err := r.client.XAck(ctx, stream, group, messageIDs...).Err()
	if err != nil {
		r.logger.Error("Failed to acknowledge messages",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Int("count", len(messageIDs)),
			zap.Error(err))
		return fmt.Errorf("failed to acknowledge messages: %w", err)
	}

	r.logger.Debug("Messages acknowledged",
		zap.String("stream", stream),
		zap.Int("count", len(messageIDs)))
	return nil
}

// PublishToStream публикует сообщение в стрим
func (r *streamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("Failed to marshal data",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	result, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(jsonData),
		},
	}).Result()

	if err != nil {
		r.logger.Error("Failed to publish to stream",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Message published to stream",
		zap.String("stream", stream),
		zap.String("message_id", result))
	return nil
}
