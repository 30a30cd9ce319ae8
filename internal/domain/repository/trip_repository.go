package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
)

// TripRepository - читающая граница сервиса персистентности поездок
type TripRepository interface {
	GetTrip(ctx context.Context, id uuid.UUID) (*domain.Trip, error)

	// ListActivities возвращает элементы маршрута, упорядоченные по дню и sort_order
	ListActivities(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)
}
