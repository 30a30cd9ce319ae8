package repository

import (
	"context"

	"github.com/itinerary-microservice/internal/domain"
)

// StreamRepository - работа с Redis Streams
type StreamRepository interface {
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeBatch читает до count непрочитанных сообщений (неблокирующий режим)
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
