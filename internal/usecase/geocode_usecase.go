package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/itinerary-microservice/internal/config"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	"github.com/itinerary-microservice/internal/pkg/errors"
	"github.com/itinerary-microservice/internal/pkg/utils"
	"go.uber.org/zap"
)

// destinationTypes - типы результатов для резолвинга назначения поездки
var destinationTypes = []string{"place", "region", "country", "locality"}

// ResolvedLocation - результат геокодинга строки локации
type ResolvedLocation struct {
	Lat  float64
	Lng  float64
	Name string
}

// GeocodeUseCase - резолвинг назначения и локаций активностей с мемоизацией.
// Кеш принадлежит экземпляру use case и очищается при смене назначения;
// доступ к нему защищён мьютексом, так как пачка локаций резолвится конкурентно.
type GeocodeUseCase struct {
	geocodingRepo repository.GeocodingRepository
	filter        *AdmissibilityFilter
	logger        *zap.Logger
	cfg           config.PlannerConfig

	mu          sync.Mutex
	destination string
	cache       map[string]*ResolvedLocation // nil значение - закешированный негативный результат
}

// NewGeocodeUseCase создает новый GeocodeUseCase
func NewGeocodeUseCase(
	geocodingRepo repository.GeocodingRepository,
	filter *AdmissibilityFilter,
	logger *zap.Logger,
	cfg config.PlannerConfig,
) *GeocodeUseCase {
	return &GeocodeUseCase{
		geocodingRepo: geocodingRepo,
		filter:        filter,
		logger:        logger,
		cfg:           cfg,
		cache:         make(map[string]*ResolvedLocation),
	}
}

// ResolveDestination резолвит строку назначения в якорную координату.
// Без якоря пайплайн не имеет смысла: ошибка здесь фатальна для всего запуска.
// Смена назначения сбрасывает геокод-кеш целиком.
func (uc *GeocodeUseCase) ResolveDestination(ctx context.Context, destination string) (*domain.Anchor, error) {
	features, err := uc.geocodingRepo.ForwardGeocode(ctx, destination, repository.GeocodeOptions{
		Limit: 1,
		Types: destinationTypes,
	})
	if err != nil {
		uc.logger.Error("Destination geocoding failed",
			zap.String("destination", destination),
			zap.Error(err))
		return nil, errors.ErrDestinationNotFound
	}

	if len(features) == 0 || len(features[0].Center) < 2 {
		uc.logger.Warn("Destination not found",
			zap.String("destination", destination))
		return nil, errors.ErrDestinationNotFound
	}

	uc.mu.Lock()
	if uc.destination != destination {
		uc.destination = destination
		uc.cache = make(map[string]*ResolvedLocation)
	}
	uc.mu.Unlock()

	anchor := &domain.Anchor{
		Coordinate: domain.Coordinate{
			Lat: features[0].Center[1],
			Lng: features[0].Center[0],
		},
		PlaceName: features[0].PlaceName,
	}

	uc.logger.Info("Destination resolved",
		zap.String("destination", destination),
		zap.String("place_name", anchor.PlaceName),
		zap.Float64("lat", anchor.Lat),
		zap.Float64("lng", anchor.Lng))

	return anchor, nil
}

// GeocodeActivities резолвит локации допустимых активностей пачками с ограниченной
// конкуррентностью: пачки идут последовательно, внутри пачки запросы параллельны.
// Падение одной локации не влияет на остальные.
func (uc *GeocodeUseCase) GeocodeActivities(
	ctx context.Context,
	anchor *domain.Anchor,
	activities []domain.Activity,
) []domain.GeocodedActivity {
	// Собираем уникальные допустимые строки локаций
	var queries []string
	seen := make(map[string]struct{})
	for _, activity := range activities {
		if !uc.filter.IsAdmissible(activity) {
			continue
		}
		location := strings.TrimSpace(*activity.Location)
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		queries = append(queries, location)
	}

	resolved := make(map[string]*ResolvedLocation, len(queries))
	var resolvedMu sync.Mutex

	batchSize := uc.cfg.GeocodeBatchSize
	for start := 0; start < len(queries); start += batchSize {
		end := start + batchSize
		if end > len(queries) {
			end = len(queries)
		}

		var wg sync.WaitGroup
		for _, query := range queries[start:end] {
			wg.Add(1)
			go func(q string) {
				defer wg.Done()

				location, ok := uc.resolveLocation(ctx, anchor, q)
				if !ok {
					return
				}

				resolvedMu.Lock()
				resolved[q] = location
				resolvedMu.Unlock()
			}(query)
		}
		wg.Wait()
	}

	// Присоединяем координаты к исходным активностям: активность попадает в
	// результат только если её локация разрешилась
	result := make([]domain.GeocodedActivity, 0, len(activities))
	for _, activity := range activities {
		if activity.Location == nil {
			continue
		}
		location, ok := resolved[strings.TrimSpace(*activity.Location)]
		if !ok {
			continue
		}
		result = append(result, domain.GeocodedActivity{
			Activity:     activity,
			Lat:          location.Lat,
			Lng:          location.Lng,
			ResolvedName: location.Name,
		})
	}

	uc.logger.Info("Batch geocoding completed",
		zap.Int("activities", len(activities)),
		zap.Int("distinct_queries", len(queries)),
		zap.Int("resolved", len(resolved)),
		zap.Int("geocoded_activities", len(result)))

	return result
}

// resolveLocation резолвит одну строку локации вблизи якоря.
// Двухфазная стратегия: сначала жёсткий bounding box (точность против
// одноимённых мест в других регионах), затем повтор без box (полнота для точек
// чуть за его пределами); обе фазы отфильтрованы радиусом от якоря.
func (uc *GeocodeUseCase) resolveLocation(ctx context.Context, anchor *domain.Anchor, location string) (*ResolvedLocation, bool) {
	key := uc.cacheKey(location)

	uc.mu.Lock()
	if cached, ok := uc.cache[key]; ok {
		uc.mu.Unlock()
		uc.logger.Debug("Geocode cache hit",
			zap.String("location", location),
			zap.Bool("negative", cached == nil))
		return cached, cached != nil
	}
	uc.mu.Unlock()

	query := location
	if !strings.Contains(strings.ToLower(location), strings.ToLower(uc.currentDestination())) {
		query = location + ", " + uc.currentDestination()
	}

	opts := repository.GeocodeOptions{
		Limit: uc.cfg.GeocodeLimit,
		BBox: []float64{
			anchor.Lng - uc.cfg.BBoxDeltaDeg,
			anchor.Lat - uc.cfg.BBoxDeltaDeg,
			anchor.Lng + uc.cfg.BBoxDeltaDeg,
			anchor.Lat + uc.cfg.BBoxDeltaDeg,
		},
		Proximity: &anchor.Coordinate,
	}

	candidates, err := uc.geocodingRepo.ForwardGeocode(ctx, query, opts)
	if err != nil {
		// Транспортная ошибка - не кешируем, локация просто пропускается
		uc.logger.Warn("Geocoding request failed",
			zap.String("location", location),
			zap.Error(err))
		return nil, false
	}

	if result := uc.pickWithinRadius(anchor, location, candidates); result != nil {
		uc.storeCache(key, result)
		return result, true
	}

	// Фаза 2: без bounding box, только с proximity-смещением
	opts.BBox = nil
	candidates, err = uc.geocodingRepo.ForwardGeocode(ctx, query, opts)
	if err != nil {
		uc.logger.Warn("Unbounded geocoding request failed",
			zap.String("location", location),
			zap.Error(err))
		return nil, false
	}

	if result := uc.pickWithinRadius(anchor, location, candidates); result != nil {
		uc.storeCache(key, result)
		return result, true
	}

	uc.logger.Debug("Location unresolvable, caching negative result",
		zap.String("location", location))
	uc.storeCache(key, nil)
	return nil, false
}

// pickWithinRadius выбирает первого кандидата в допустимом радиусе от якоря.
// Кандидаты дальше радиуса отбрасываются, не подрезаются.
func (uc *GeocodeUseCase) pickWithinRadius(anchor *domain.Anchor, location string, candidates []domain.GeocodeFeature) *ResolvedLocation {
	for _, candidate := range candidates {
		if len(candidate.Center) < 2 {
			continue
		}

		lat, lng := candidate.Center[1], candidate.Center[0]
		distance := utils.HaversineDistance(anchor.Lat, anchor.Lng, lat, lng)
		if distance > uc.cfg.MaxRadiusKm {
			uc.logger.Debug("Geocode candidate rejected: outside radius",
				zap.String("location", location),
				zap.String("candidate", candidate.PlaceName),
				zap.Float64("distance_km", distance))
			continue
		}

		return &ResolvedLocation{
			Lat:  lat,
			Lng:  lng,
			Name: candidate.PlaceName,
		}
	}
	return nil
}

func (uc *GeocodeUseCase) cacheKey(location string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(location), " "))
	return normalized + "|" + uc.currentDestination()
}

func (uc *GeocodeUseCase) currentDestination() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.destination
}

func (uc *GeocodeUseCase) storeCache(key string, value *ResolvedLocation) {
	uc.mu.Lock()
	uc.cache[key] = value
	uc.mu.Unlock()
}
