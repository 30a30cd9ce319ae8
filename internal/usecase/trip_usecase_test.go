package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	pkgerrors "github.com/itinerary-microservice/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTripPlanner(geocodingRepo *MockGeocodingRepository, routingRepo *MockRoutingRepository) *TripPlannerUseCase {
	logger := zap.NewNop()
	cfg := testPlannerConfig()
	geocodeUC := NewGeocodeUseCase(geocodingRepo, NewAdmissibilityFilter(logger), logger, cfg)
	routeUC := NewRouteUseCase(routingRepo, logger, cfg)
	return NewTripPlannerUseCase(geocodeUC, routeUC, logger)
}

func plannerActivity(day, sortOrder int, title, location string) domain.Activity {
	return domain.Activity{
		ID:        uuid.New(),
		DayNumber: day,
		SortOrder: sortOrder,
		Title:     title,
		Location:  &location,
		ItemType:  domain.ItemTypeActivity,
	}
}

// expectActivityGeocode настраивает резолвинг строки локации в точку рядом с якорем
func expectActivityGeocode(repo *MockGeocodingRepository, location string, lat, lng float64) {
	repo.On("ForwardGeocode", mock.Anything, location+", Mumbai", mock.MatchedBy(func(opts repository.GeocodeOptions) bool {
		return opts.Limit > 0 && opts.Types == nil
	})).Return([]domain.GeocodeFeature{
		{ID: "poi." + location, PlaceName: location + ", Mumbai, India", Center: []float64{lng, lat}},
	}, nil)
}

func optimizedTrip(distance, duration float64, waypoints int) *domain.TripsResponse {
	resp := &domain.TripsResponse{
		Code:  "Ok",
		Trips: []domain.MapboxRoute{{Distance: distance, Duration: duration, DurationTypical: duration}},
	}
	for i := 0; i < waypoints; i++ {
		resp.Waypoints = append(resp.Waypoints, domain.TripWaypoint{WaypointIndex: i})
		if i > 0 {
			resp.Trips[0].Legs = append(resp.Trips[0].Legs, domain.RouteLeg{})
		}
	}
	return resp
}

func matchFirstLat(lat float64) interface{} {
	return mock.MatchedBy(func(coords []domain.Coordinate) bool {
		return len(coords) > 0 && coords[0].Lat == lat
	})
}

func TestTripPlannerUseCase_PlanTrip(t *testing.T) {
	ctx := context.Background()

	trip := &domain.Trip{
		ID:          uuid.New(),
		Destination: "Mumbai",
		StartDate:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	}

	twoDayActivities := func() []domain.Activity {
		return []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
			plannerActivity(1, 2, "Drive", "Marine Drive"),
			plannerActivity(2, 1, "Temple", "Siddhivinayak Temple"),
			plannerActivity(2, 2, "Dargah", "Haji Ali Dargah"),
		}
	}

	setupGeocoding := func(repo *MockGeocodingRepository) {
		expectDestination(repo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(repo, "Gateway of India", 18.9220, 72.8347)
		expectActivityGeocode(repo, "Marine Drive", 18.9442, 72.8237)
		expectActivityGeocode(repo, "Siddhivinayak Temple", 19.0170, 72.8302)
		expectActivityGeocode(repo, "Haji Ali Dargah", 18.9829, 72.8089)
	}

	t.Run("aggregates stats across routed days", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		setupGeocoding(geocodingRepo)

		routingRepo.On("GetOptimizedTrip", mock.Anything, matchFirstLat(18.9220)).
			Return(optimizedTrip(5000, 1200, 2), nil).Once()
		routingRepo.On("GetOptimizedTrip", mock.Anything, matchFirstLat(19.0170)).
			Return(optimizedTrip(3200, 900, 2), nil).Once()

		planner := newTripPlanner(geocodingRepo, routingRepo)

		plan, err := planner.PlanTrip(ctx, trip, twoDayActivities())
		require.NoError(t, err)
		assert.False(t, plan.Loading)
		assert.Len(t, plan.GeocodedActivities, 4)
		require.Len(t, plan.DayRoutes, 2)
		assert.InDelta(t, 8.2, plan.Stats.TotalKm, 0.001)
		assert.InDelta(t, 35.0, plan.Stats.TotalMin, 0.001)
		assert.InDelta(t, 35.0, plan.Stats.TotalTrafficMin, 0.001)
		assert.False(t, plan.Stats.IsFallback)
		assert.Empty(t, plan.UnroutedDays)
	})

	t.Run("failed day is excluded without touching the others", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		setupGeocoding(geocodingRepo)

		routingRepo.On("GetOptimizedTrip", mock.Anything, matchFirstLat(18.9220)).
			Return(optimizedTrip(5000, 1200, 2), nil).Once()
		routingRepo.On("GetOptimizedTrip", mock.Anything, matchFirstLat(19.0170)).
			Return(nil, errors.New("unavailable")).Once()
		routingRepo.On("GetDirections", mock.Anything, matchFirstLat(19.0170), mock.Anything).
			Return(nil, errors.New("unavailable")).Once()

		planner := newTripPlanner(geocodingRepo, routingRepo)

		plan, err := planner.PlanTrip(ctx, trip, twoDayActivities())
		require.NoError(t, err)
		require.Len(t, plan.DayRoutes, 1)
		assert.NotNil(t, plan.DayRoutes[1])
		assert.Equal(t, []int{2}, plan.UnroutedDays)
		assert.InDelta(t, 5.0, plan.Stats.TotalKm, 0.001)
	})

	t.Run("traffic estimate for far future day marks plan as fallback", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		expectDestination(geocodingRepo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(geocodingRepo, "Gateway of India", 18.9220, 72.8347)
		expectActivityGeocode(geocodingRepo, "Marine Drive", 18.9442, 72.8237)

		routingRepo.On("GetOptimizedTrip", mock.Anything, mock.Anything).
			Return(nil, errors.New("unavailable")).Once()
		routingRepo.On("GetDirections", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.DirectionsResponse{
				Code:   "Ok",
				Routes: []domain.MapboxRoute{{Distance: 5000, Duration: 1200, DurationTypical: 1200}},
			}, nil).Once()

		planner := newTripPlanner(geocodingRepo, routingRepo)

		// День поездки далеко в будущем: трафик заменяется недавней оценкой
		futureTrip := &domain.Trip{
			ID:          uuid.New(),
			Destination: "Mumbai",
			StartDate:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		activities := []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
			plannerActivity(1, 2, "Drive", "Marine Drive"),
		}

		plan, err := planner.PlanTrip(ctx, futureTrip, activities)
		require.NoError(t, err)
		assert.True(t, plan.Stats.IsFallback)
	})

	t.Run("directions fallback on past day is not a traffic estimate", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		expectDestination(geocodingRepo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(geocodingRepo, "Gateway of India", 18.9220, 72.8347)
		expectActivityGeocode(geocodingRepo, "Marine Drive", 18.9442, 72.8237)

		routingRepo.On("GetOptimizedTrip", mock.Anything, mock.Anything).
			Return(nil, errors.New("unavailable")).Once()
		routingRepo.On("GetDirections", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.DirectionsResponse{
				Code:   "Ok",
				Routes: []domain.MapboxRoute{{Distance: 5000, Duration: 1200, DurationTypical: 1200}},
			}, nil).Once()

		planner := newTripPlanner(geocodingRepo, routingRepo)

		pastTrip := &domain.Trip{
			ID:          uuid.New(),
			Destination: "Mumbai",
			StartDate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		activities := []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
			plannerActivity(1, 2, "Drive", "Marine Drive"),
		}

		plan, err := planner.PlanTrip(ctx, pastTrip, activities)
		require.NoError(t, err)
		assert.False(t, plan.Stats.IsFallback)
		require.NotNil(t, plan.DayRoutes[1])
		assert.False(t, plan.DayRoutes[1].IsOptimized)
	})

	t.Run("unchanged itinerary returns existing plan without recompute", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		expectDestination(geocodingRepo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(geocodingRepo, "Gateway of India", 18.9220, 72.8347)
		expectActivityGeocode(geocodingRepo, "Marine Drive", 18.9442, 72.8237)

		routingRepo.On("GetOptimizedTrip", mock.Anything, mock.Anything).
			Return(optimizedTrip(5000, 1200, 2), nil)

		planner := newTripPlanner(geocodingRepo, routingRepo)

		activities := []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
			plannerActivity(1, 2, "Drive", "Marine Drive"),
		}

		first, err := planner.PlanTrip(ctx, trip, activities)
		require.NoError(t, err)
		second, err := planner.PlanTrip(ctx, trip, activities)
		require.NoError(t, err)

		assert.Same(t, first, second)
		geocodingRepo.AssertNumberOfCalls(t, "ForwardGeocode", 3) // destination + 2 локации, один раз
		routingRepo.AssertNumberOfCalls(t, "GetOptimizedTrip", 1)
	})

	t.Run("completed toggle triggers recompute", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		expectDestination(geocodingRepo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(geocodingRepo, "Gateway of India", 18.9220, 72.8347)
		expectActivityGeocode(geocodingRepo, "Marine Drive", 18.9442, 72.8237)

		routingRepo.On("GetOptimizedTrip", mock.Anything, mock.Anything).
			Return(optimizedTrip(5000, 1200, 2), nil)

		planner := newTripPlanner(geocodingRepo, routingRepo)

		activities := []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
			plannerActivity(1, 2, "Drive", "Marine Drive"),
		}

		first, err := planner.PlanTrip(ctx, trip, activities)
		require.NoError(t, err)

		activities[0].Completed = true
		second, err := planner.PlanTrip(ctx, trip, activities)
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
		routingRepo.AssertNumberOfCalls(t, "GetOptimizedTrip", 2)
	})

	t.Run("location edit changing admissible count triggers recompute", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		expectDestination(geocodingRepo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(geocodingRepo, "Gateway of India", 18.9220, 72.8347)
		expectActivityGeocode(geocodingRepo, "Marine Drive", 18.9442, 72.8237)

		routingRepo.On("GetOptimizedTrip", mock.Anything, mock.Anything).
			Return(optimizedTrip(5000, 1200, 2), nil)

		planner := newTripPlanner(geocodingRepo, routingRepo)

		// "Breakfast" отсеивается фильтром: день остаётся с одной точкой
		activities := []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
			plannerActivity(1, 2, "Drive", "Breakfast"),
		}

		first, err := planner.PlanTrip(ctx, trip, activities)
		require.NoError(t, err)
		assert.Len(t, first.GeocodedActivities, 1)
		assert.Empty(t, first.DayRoutes)
		assert.Equal(t, 1, first.AdmissibleActivities)

		// Правка строки локации не меняет отпечаток, но план обязан пересчитаться
		marine := "Marine Drive"
		activities[1].Location = &marine

		second, err := planner.PlanTrip(ctx, trip, activities)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Equal(t, first.Fingerprint, second.Fingerprint)
		assert.Equal(t, 2, second.AdmissibleActivities)
		assert.Len(t, second.GeocodedActivities, 2)
		require.Len(t, second.DayRoutes, 1)
	})

	t.Run("unresolvable destination aborts without partial plan", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		geocodingRepo.On("ForwardGeocode", mock.Anything, "Mumbai", mock.Anything).
			Return([]domain.GeocodeFeature{}, nil)

		planner := newTripPlanner(geocodingRepo, routingRepo)

		plan, err := planner.PlanTrip(ctx, trip, twoDayActivities())
		assert.Nil(t, plan)
		assert.ErrorIs(t, err, pkgerrors.ErrDestinationNotFound)

		_, ok := planner.GetPlan(trip.ID)
		assert.False(t, ok)
		routingRepo.AssertNotCalled(t, "GetOptimizedTrip")
	})

	t.Run("day with single geocoded point is skipped silently", func(t *testing.T) {
		geocodingRepo := new(MockGeocodingRepository)
		routingRepo := new(MockRoutingRepository)
		expectDestination(geocodingRepo, "Mumbai", mumbaiFeature())
		expectActivityGeocode(geocodingRepo, "Gateway of India", 18.9220, 72.8347)

		planner := newTripPlanner(geocodingRepo, routingRepo)

		activities := []domain.Activity{
			plannerActivity(1, 1, "Gateway", "Gateway of India"),
		}

		plan, err := planner.PlanTrip(ctx, trip, activities)
		require.NoError(t, err)
		assert.Empty(t, plan.DayRoutes)
		assert.Empty(t, plan.UnroutedDays)
		routingRepo.AssertNotCalled(t, "GetOptimizedTrip")
		routingRepo.AssertNotCalled(t, "GetDirections")
	})
}

func TestFingerprint(t *testing.T) {
	base := []domain.Activity{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), SortOrder: 1},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), SortOrder: 2},
	}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base), Fingerprint(base))
	})

	t.Run("sensitive to completed and sort order", func(t *testing.T) {
		completed := make([]domain.Activity, len(base))
		copy(completed, base)
		completed[0].Completed = true
		assert.NotEqual(t, Fingerprint(base), Fingerprint(completed))

		reordered := make([]domain.Activity, len(base))
		copy(reordered, base)
		reordered[1].SortOrder = 5
		assert.NotEqual(t, Fingerprint(base), Fingerprint(reordered))
	})

	t.Run("insensitive to cosmetic fields", func(t *testing.T) {
		renamed := make([]domain.Activity, len(base))
		copy(renamed, base)
		renamed[0].Title = "New title"
		location := "Somewhere else"
		renamed[1].Location = &location
		assert.Equal(t, Fingerprint(base), Fingerprint(renamed))
	})
}
