package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	pkgerrors "github.com/itinerary-microservice/internal/pkg/errors"
	"go.uber.org/zap"
)

type tripRepository struct {
	db *DB
}

// NewTripRepository создает новый экземпляр TripRepository.
// Репозиторий только читает: поездки и элементы маршрута принадлежат
// сервису поездок, здесь они потребляются для пересчёта плана.
func NewTripRepository(db *DB) repository.TripRepository {
	return &tripRepository{db: db}
}

// GetTrip возвращает поездку по идентификатору
func (r *tripRepository) GetTrip(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	query := `
		SELECT id, destination, start_date
		FROM trips
		WHERE id = $1`

	var trip domain.Trip
	if err := r.db.GetContext(ctx, &trip, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.ErrTripNotFound
		}
		r.db.logger.Error("Failed to get trip",
			zap.String("trip_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &trip, nil
}

// ListActivities возвращает элементы маршрута поездки в порядке дня и sort_order
func (r *tripRepository) ListActivities(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	query := `
		SELECT id, day_number, sort_order, title, location, item_type, completed
		FROM itinerary_items
		WHERE trip_id = $1
		ORDER BY day_number, sort_order`

	var activities []domain.Activity
	if err := r.db.SelectContext(ctx, &activities, query, tripID); err != nil {
		r.db.logger.Error("Failed to list itinerary items",
			zap.String("trip_id", tripID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list itinerary items: %w", err)
	}

	return activities, nil
}
