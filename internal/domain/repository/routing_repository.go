package repository

import (
	"context"
	"time"

	"github.com/itinerary-microservice/internal/domain"
)

// RoutingRepository - построение маршрутов через внешний провайдер
type RoutingRepository interface {
	// GetOptimizedTrip строит маршрут с переупорядочиванием промежуточных точек.
	// Первая и последняя координаты фиксированы, roundtrip выключен.
	GetOptimizedTrip(ctx context.Context, coords []domain.Coordinate) (*domain.TripsResponse, error)

	// GetDirections строит маршрут в заданном порядке точек с учётом трафика
	// на момент departAt
	GetDirections(ctx context.Context, coords []domain.Coordinate, departAt time.Time) (*domain.DirectionsResponse, error)
}
