package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/config"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	pkgerrors "github.com/itinerary-microservice/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockGeocodingRepository мок репозитория геокодинга
type MockGeocodingRepository struct {
	mock.Mock
}

func (m *MockGeocodingRepository) ForwardGeocode(ctx context.Context, query string, opts repository.GeocodeOptions) ([]domain.GeocodeFeature, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeocodeFeature), args.Error(1)
}

func testPlannerConfig() config.PlannerConfig {
	return config.PlannerConfig{
		MaxRadiusKm:            25,
		BBoxDeltaDeg:           0.3,
		GeocodeLimit:           3,
		GeocodeBatchSize:       5,
		OptimizerMaxWaypoints:  12,
		DirectionsMaxWaypoints: 25,
		DepartureHour:          9,
		TrafficHorizonDays:     2,
	}
}

func mumbaiFeature() domain.GeocodeFeature {
	return domain.GeocodeFeature{
		ID:        "place.1",
		Text:      "Mumbai",
		PlaceName: "Mumbai, Maharashtra, India",
		Center:    []float64{72.8777, 19.0760},
	}
}

func newGeocodeUseCase(repo *MockGeocodingRepository) *GeocodeUseCase {
	logger := zap.NewNop()
	return NewGeocodeUseCase(repo, NewAdmissibilityFilter(logger), logger, testPlannerConfig())
}

func expectDestination(repo *MockGeocodingRepository, destination string, feature domain.GeocodeFeature) {
	repo.On("ForwardGeocode", mock.Anything, destination, mock.MatchedBy(func(opts repository.GeocodeOptions) bool {
		return opts.Limit == 1 && len(opts.Types) > 0
	})).Return([]domain.GeocodeFeature{feature}, nil)
}

func geocodableActivity(location string) domain.Activity {
	return domain.Activity{
		ID:        uuid.New(),
		DayNumber: 1,
		Title:     "Visit",
		Location:  &location,
		ItemType:  domain.ItemTypeActivity,
	}
}

func TestGeocodeUseCase_ResolveDestination(t *testing.T) {
	t.Run("successful resolution", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		expectDestination(repo, "Mumbai", mumbaiFeature())

		uc := newGeocodeUseCase(repo)

		anchor, err := uc.ResolveDestination(context.Background(), "Mumbai")
		require.NoError(t, err)
		assert.Equal(t, 19.0760, anchor.Lat)
		assert.Equal(t, 72.8777, anchor.Lng)
		assert.Equal(t, "Mumbai, Maharashtra, India", anchor.PlaceName)
		repo.AssertExpectations(t)
	})

	t.Run("no features returns destination not found", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		repo.On("ForwardGeocode", mock.Anything, "Atlantis", mock.Anything).
			Return([]domain.GeocodeFeature{}, nil)

		uc := newGeocodeUseCase(repo)

		anchor, err := uc.ResolveDestination(context.Background(), "Atlantis")
		assert.Nil(t, anchor)
		assert.ErrorIs(t, err, pkgerrors.ErrDestinationNotFound)
	})

	t.Run("transport error returns destination not found", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		repo.On("ForwardGeocode", mock.Anything, "Mumbai", mock.Anything).
			Return(nil, errors.New("connection refused"))

		uc := newGeocodeUseCase(repo)

		anchor, err := uc.ResolveDestination(context.Background(), "Mumbai")
		assert.Nil(t, anchor)
		assert.ErrorIs(t, err, pkgerrors.ErrDestinationNotFound)
	})
}

func TestGeocodeUseCase_GeocodeActivities(t *testing.T) {
	ctx := context.Background()

	resolveAnchor := func(t *testing.T, repo *MockGeocodingRepository, uc *GeocodeUseCase) *domain.Anchor {
		t.Helper()
		expectDestination(repo, "Mumbai", mumbaiFeature())
		anchor, err := uc.ResolveDestination(ctx, "Mumbai")
		require.NoError(t, err)
		return anchor
	}

	t.Run("resolves within bounding box and appends destination", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		repo.On("ForwardGeocode", mock.Anything, "Gateway of India, Mumbai", mock.MatchedBy(func(opts repository.GeocodeOptions) bool {
			return len(opts.BBox) == 4 && opts.Proximity != nil
		})).Return([]domain.GeocodeFeature{
			{ID: "poi.1", PlaceName: "Gateway of India, Mumbai, India", Center: []float64{72.8347, 18.9220}},
		}, nil).Once()

		result := uc.GeocodeActivities(ctx, anchor, []domain.Activity{geocodableActivity("Gateway of India")})
		require.Len(t, result, 1)
		assert.Equal(t, 18.9220, result[0].Lat)
		assert.Equal(t, "Gateway of India, Mumbai, India", result[0].ResolvedName)
		repo.AssertExpectations(t)
	})

	t.Run("query already containing destination is not suffixed", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		repo.On("ForwardGeocode", mock.Anything, "Juhu Beach, mumbai", mock.Anything).
			Return([]domain.GeocodeFeature{
				{ID: "poi.2", PlaceName: "Juhu Beach, Mumbai, India", Center: []float64{72.8267, 19.0883}},
			}, nil).Once()

		result := uc.GeocodeActivities(ctx, anchor, []domain.Activity{geocodableActivity("Juhu Beach, mumbai")})
		require.Len(t, result, 1)
		repo.AssertExpectations(t)
	})

	t.Run("falls back to unbounded search when bbox phase is empty", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		repo.On("ForwardGeocode", mock.Anything, "Elephanta Caves, Mumbai", mock.MatchedBy(func(opts repository.GeocodeOptions) bool {
			return len(opts.BBox) == 4
		})).Return([]domain.GeocodeFeature{}, nil).Once()
		repo.On("ForwardGeocode", mock.Anything, "Elephanta Caves, Mumbai", mock.MatchedBy(func(opts repository.GeocodeOptions) bool {
			return opts.BBox == nil
		})).Return([]domain.GeocodeFeature{
			{ID: "poi.3", PlaceName: "Elephanta Caves, Gharapuri, India", Center: []float64{72.9315, 18.9633}},
		}, nil).Once()

		result := uc.GeocodeActivities(ctx, anchor, []domain.Activity{geocodableActivity("Elephanta Caves")})
		require.Len(t, result, 1)
		assert.Equal(t, "Elephanta Caves, Gharapuri, India", result[0].ResolvedName)
		repo.AssertExpectations(t)
	})

	t.Run("candidates outside radius are rejected and cached negatively", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		// Пуна ~120 км от якоря: кандидат отклоняется в обеих фазах
		puneOnly := []domain.GeocodeFeature{
			{ID: "poi.4", PlaceName: "Shaniwar Wada, Pune, India", Center: []float64{73.8553, 18.5195}},
		}
		repo.On("ForwardGeocode", mock.Anything, "Shaniwar Wada, Mumbai", mock.Anything).
			Return(puneOnly, nil).Twice()

		activities := []domain.Activity{geocodableActivity("Shaniwar Wada")}

		result := uc.GeocodeActivities(ctx, anchor, activities)
		assert.Empty(t, result)

		// Повторный запуск обслуживается негативным кешем без новых запросов
		result = uc.GeocodeActivities(ctx, anchor, activities)
		assert.Empty(t, result)
		repo.AssertNumberOfCalls(t, "ForwardGeocode", 3) // destination + две фазы
	})

	t.Run("repeated run is served from cache", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		repo.On("ForwardGeocode", mock.Anything, "Gateway of India, Mumbai", mock.Anything).
			Return([]domain.GeocodeFeature{
				{ID: "poi.1", PlaceName: "Gateway of India, Mumbai, India", Center: []float64{72.8347, 18.9220}},
			}, nil).Once()

		activities := []domain.Activity{geocodableActivity("Gateway of India")}

		first := uc.GeocodeActivities(ctx, anchor, activities)
		second := uc.GeocodeActivities(ctx, anchor, activities)
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ResolvedName, second[0].ResolvedName)
		repo.AssertNumberOfCalls(t, "ForwardGeocode", 2) // destination + единственный геокод
	})

	t.Run("transport error is not cached", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		repo.On("ForwardGeocode", mock.Anything, "Gateway of India, Mumbai", mock.Anything).
			Return(nil, errors.New("timeout")).Once()
		repo.On("ForwardGeocode", mock.Anything, "Gateway of India, Mumbai", mock.Anything).
			Return([]domain.GeocodeFeature{
				{ID: "poi.1", PlaceName: "Gateway of India, Mumbai, India", Center: []float64{72.8347, 18.9220}},
			}, nil)

		activities := []domain.Activity{geocodableActivity("Gateway of India")}

		result := uc.GeocodeActivities(ctx, anchor, activities)
		assert.Empty(t, result)

		result = uc.GeocodeActivities(ctx, anchor, activities)
		require.Len(t, result, 1)
	})

	t.Run("destination change resets cache", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		repo.On("ForwardGeocode", mock.Anything, "Gateway of India, Mumbai", mock.Anything).
			Return([]domain.GeocodeFeature{
				{ID: "poi.1", PlaceName: "Gateway of India, Mumbai, India", Center: []float64{72.8347, 18.9220}},
			}, nil).Once()

		activities := []domain.Activity{geocodableActivity("Gateway of India")}
		require.Len(t, uc.GeocodeActivities(ctx, anchor, activities), 1)

		// Смена назначения: те же строки локаций резолвятся заново
		expectDestination(repo, "Paris", domain.GeocodeFeature{
			ID: "place.2", Text: "Paris", PlaceName: "Paris, France", Center: []float64{2.3522, 48.8566},
		})
		parisAnchor, err := uc.ResolveDestination(ctx, "Paris")
		require.NoError(t, err)

		repo.On("ForwardGeocode", mock.Anything, "Gateway of India, Paris", mock.Anything).
			Return([]domain.GeocodeFeature{}, nil).Twice()

		assert.Empty(t, uc.GeocodeActivities(ctx, parisAnchor, activities))
		repo.AssertExpectations(t)
	})

	t.Run("duplicate locations geocoded once", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		repo.On("ForwardGeocode", mock.Anything, "Gateway of India, Mumbai", mock.Anything).
			Return([]domain.GeocodeFeature{
				{ID: "poi.1", PlaceName: "Gateway of India, Mumbai, India", Center: []float64{72.8347, 18.9220}},
			}, nil).Once()

		activities := []domain.Activity{
			geocodableActivity("Gateway of India"),
			geocodableActivity("  Gateway of India  "),
		}

		result := uc.GeocodeActivities(ctx, anchor, activities)
		require.Len(t, result, 2)
		repo.AssertNumberOfCalls(t, "ForwardGeocode", 2) // destination + один геокод
	})

	t.Run("inadmissible activities are skipped without calls", func(t *testing.T) {
		repo := new(MockGeocodingRepository)
		uc := newGeocodeUseCase(repo)
		anchor := resolveAnchor(t, repo, uc)

		vague := geocodableActivity("Breakfast")
		result := uc.GeocodeActivities(ctx, anchor, []domain.Activity{vague})
		assert.Empty(t, result)
		repo.AssertNumberOfCalls(t, "ForwardGeocode", 1) // только destination
	})
}

func TestGeocodeUseCase_CacheKeyNormalization(t *testing.T) {
	repo := new(MockGeocodingRepository)
	uc := newGeocodeUseCase(repo)

	expectDestination(repo, "Mumbai", mumbaiFeature())
	_, err := uc.ResolveDestination(context.Background(), "Mumbai")
	require.NoError(t, err)

	key1 := uc.cacheKey("Gateway   of India")
	key2 := uc.cacheKey("gateway of  india")
	assert.Equal(t, key1, key2)
	assert.True(t, strings.HasSuffix(key1, "|Mumbai"))
}
