package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistry(geocodingRepo *MockGeocodingRepository, routingRepo *MockRoutingRepository) *PlannerRegistry {
	return NewPlannerRegistry(geocodingRepo, routingRepo, zap.NewNop(), testPlannerConfig())
}

func TestPlannerRegistry_Session(t *testing.T) {
	t.Run("same trip returns same session", func(t *testing.T) {
		registry := newRegistry(new(MockGeocodingRepository), new(MockRoutingRepository))
		tripID := uuid.New()

		assert.Same(t, registry.Session(tripID), registry.Session(tripID))
	})

	t.Run("different trips get isolated sessions", func(t *testing.T) {
		registry := newRegistry(new(MockGeocodingRepository), new(MockRoutingRepository))

		assert.NotSame(t, registry.Session(uuid.New()), registry.Session(uuid.New()))
	})
}

func TestPlannerRegistry_GetPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown trip has no plan", func(t *testing.T) {
		registry := newRegistry(new(MockGeocodingRepository), new(MockRoutingRepository))

		_, ok := registry.GetPlan(uuid.New())
		assert.False(t, ok)
	})

	t.Run("returns snapshot of planned trip", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		expectDestination(geocodingRepo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(geocodingRepo, "Gateway of India", 18.9220, 72.8347)
		expectActivityGeocode(geocodingRepo, "Marine Drive", 18.9442, 72.8237)
		routingRepo.On("GetOptimizedTrip", mock.Anything, mock.Anything).
			Return(optimizedTrip(5000, 1200, 2), nil)

		registry := newRegistry(geocodingRepo, routingRepo)

		trip := &domain.Trip{
			ID:          uuid.New(),
			Destination: "Mumbai",
			StartDate:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		}
		activities := []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
			plannerActivity(1, 2, "Drive", "Marine Drive"),
		}

		planned, err := registry.Session(trip.ID).PlanTrip(ctx, trip, activities)
		require.NoError(t, err)

		got, ok := registry.GetPlan(trip.ID)
		require.True(t, ok)
		assert.Same(t, planned, got)
	})
}
