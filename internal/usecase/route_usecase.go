package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/itinerary-microservice/internal/config"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	"go.uber.org/zap"
)

// RouteUseCase - построение дневного маршрута: оптимизация порядка точек с
// фолбэком на directions, классификация загруженности, кеш результатов.
// Кеш принадлежит экземпляру use case; ключ кодирует порядок координат,
// так как перестановка точек меняет результат.
type RouteUseCase struct {
	routingRepo repository.RoutingRepository
	logger      *zap.Logger
	cfg         config.PlannerConfig
	now         func() time.Time

	mu    sync.Mutex
	cache map[string]*domain.DayRoute
}

// NewRouteUseCase создает новый RouteUseCase
func NewRouteUseCase(
	routingRepo repository.RoutingRepository,
	logger *zap.Logger,
	cfg config.PlannerConfig,
) *RouteUseCase {
	return &RouteUseCase{
		routingRepo: routingRepo,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
		cache:       make(map[string]*domain.DayRoute),
	}
}

// ClearCache сбрасывает кеш маршрутов (вызывается при изменении маршрута поездки)
func (uc *RouteUseCase) ClearCache() {
	uc.mu.Lock()
	uc.cache = make(map[string]*domain.DayRoute)
	uc.mu.Unlock()
}

type waypoint struct {
	coord domain.Coordinate
	label string
}

// ComputeDayRoute строит маршрут одного дня по упорядоченному списку
// геокодированных активностей (>= 2). При недоступности и оптимизатора, и
// directions возвращает ошибку - день просто выпадает из агрегатов.
func (uc *RouteUseCase) ComputeDayRoute(
	ctx context.Context,
	date time.Time,
	activities []domain.GeocodedActivity,
) (*domain.DayRoute, error) {
	if len(activities) < 2 {
		return nil, fmt.Errorf("day route requires at least 2 waypoints, got %d", len(activities))
	}

	waypoints := make([]waypoint, len(activities))
	for i, activity := range activities {
		waypoints[i] = waypoint{
			coord: domain.Coordinate{Lat: activity.Lat, Lng: activity.Lng},
			label: activity.Title,
		}
	}

	// Прореживание применяется только на directions-пути, но ключ кеша должен
	// соответствовать последовательности, которая реально уйдёт наружу
	routeWaypoints := waypoints
	if len(waypoints) > uc.cfg.DirectionsMaxWaypoints {
		routeWaypoints = thinWaypoints(waypoints, uc.cfg.DirectionsMaxWaypoints)
		uc.logger.Info("Waypoints thinned for directions request",
			zap.Int("original", len(waypoints)),
			zap.Int("thinned", len(routeWaypoints)))
	}

	key := coordKey(routeWaypoints)

	uc.mu.Lock()
	if cached, ok := uc.cache[key]; ok {
		uc.mu.Unlock()
		uc.logger.Debug("Route cache hit", zap.String("key", key))
		return cached, nil
	}
	uc.mu.Unlock()

	var dayRoute *domain.DayRoute

	if len(waypoints) <= uc.cfg.OptimizerMaxWaypoints {
		optimized, err := uc.computeOptimized(ctx, waypoints)
		if err != nil {
			// Оптимизатор недоступен или вернул не-Ok - переходим на directions
			uc.logger.Warn("Optimizer failed, falling back to directions",
				zap.Int("waypoints", len(waypoints)),
				zap.Error(err))
		} else {
			dayRoute = optimized
		}
	}

	if dayRoute == nil {
		directions, err := uc.computeDirections(ctx, date, routeWaypoints)
		if err != nil {
			uc.logger.Error("Directions fallback failed, day route skipped",
				zap.Int("waypoints", len(routeWaypoints)),
				zap.Error(err))
			return nil, err
		}
		dayRoute = directions
	}

	uc.mu.Lock()
	uc.cache[key] = dayRoute
	uc.mu.Unlock()

	return dayRoute, nil
}

// computeOptimized запрашивает оптимизированный порядок объезда
func (uc *RouteUseCase) computeOptimized(ctx context.Context, waypoints []waypoint) (*domain.DayRoute, error) {
	coords := make([]domain.Coordinate, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = wp.coord
	}

	resp, err := uc.routingRepo.GetOptimizedTrip(ctx, coords)
	if err != nil {
		return nil, err
	}
	if len(resp.Trips) == 0 || len(resp.Waypoints) != len(waypoints) {
		return nil, fmt.Errorf("optimizer returned no usable trip")
	}

	// waypoints[i].WaypointIndex - позиция i-й входной точки в порядке объезда;
	// разворачиваем в перестановку order[позиция] = входной индекс
	order := make([]int, len(resp.Waypoints))
	for i, wp := range resp.Waypoints {
		if wp.WaypointIndex < 0 || wp.WaypointIndex >= len(order) {
			return nil, fmt.Errorf("optimizer returned invalid waypoint index %d", wp.WaypointIndex)
		}
		order[wp.WaypointIndex] = i
	}

	labels := make([]string, len(order))
	for pos, inputIdx := range order {
		labels[pos] = waypoints[inputIdx].label
	}

	dayRoute := uc.buildDayRoute(&resp.Trips[0], labels)
	dayRoute.IsOptimized = true
	dayRoute.WaypointOrder = order

	uc.logger.Info("Optimized day route computed",
		zap.Int("waypoints", len(waypoints)),
		zap.Float64("distance_km", dayRoute.DistanceKm))

	return dayRoute, nil
}

// computeDirections строит маршрут в исходном порядке точек
func (uc *RouteUseCase) computeDirections(ctx context.Context, date time.Time, waypoints []waypoint) (*domain.DayRoute, error) {
	coords := make([]domain.Coordinate, len(waypoints))
	labels := make([]string, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = wp.coord
		labels[i] = wp.label
	}

	departAt, isEstimate := uc.departureTime(date)

	resp, err := uc.routingRepo.GetDirections(ctx, coords, departAt)
	if err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, fmt.Errorf("directions returned no routes")
	}

	dayRoute := uc.buildDayRoute(&resp.Routes[0], labels)
	dayRoute.IsTrafficEstimate = isEstimate

	uc.logger.Info("Fallback day route computed",
		zap.Int("waypoints", len(waypoints)),
		zap.Bool("traffic_estimate", isEstimate),
		zap.Float64("distance_km", dayRoute.DistanceKm))

	return dayRoute, nil
}

// departureTime подбирает depart_at для запроса directions.
// Будущие даты лежат за горизонтом прогноза трафика провайдера, поэтому вместо
// них подставляется недавняя дата как приближение типичного трафика.
func (uc *RouteUseCase) departureTime(date time.Time) (time.Time, bool) {
	now := uc.now()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	todayEnd := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	if dayStart.After(todayEnd) {
		estimate := now.AddDate(0, 0, -uc.cfg.TrafficHorizonDays)
		departAt := time.Date(estimate.Year(), estimate.Month(), estimate.Day(),
			uc.cfg.DepartureHour, 0, 0, 0, estimate.Location())
		return departAt, true
	}

	departAt := time.Date(date.Year(), date.Month(), date.Day(),
		uc.cfg.DepartureHour, 0, 0, 0, date.Location())
	return departAt, false
}

// buildDayRoute переводит ответ провайдера в доменную модель
func (uc *RouteUseCase) buildDayRoute(route *domain.MapboxRoute, labels []string) *domain.DayRoute {
	typical := route.DurationTypical
	if typical == 0 {
		typical = route.Duration
	}

	dayRoute := &domain.DayRoute{
		Geometry:           domain.LineString(route.Geometry.Coordinates),
		DistanceKm:         route.Distance / 1000,
		DurationMin:        typical / 60,
		DurationTrafficMin: route.Duration / 60,
		Segments:           make([]domain.RouteSegment, 0, len(route.Legs)),
	}

	for i, leg := range route.Legs {
		segment := domain.RouteSegment{
			DistanceKm:         leg.Distance / 1000,
			DurationMin:        legTypicalMin(leg),
			DurationTrafficMin: leg.Duration / 60,
			Congestion:         classifyCongestion(leg.Annotation),
			Geometry:           legGeometry(leg),
		}
		if i < len(labels) {
			segment.FromLabel = labels[i]
		}
		if i+1 < len(labels) {
			segment.ToLabel = labels[i+1]
		}
		dayRoute.Segments = append(dayRoute.Segments, segment)
	}

	return dayRoute
}

func legTypicalMin(leg domain.RouteLeg) float64 {
	if leg.DurationTypical > 0 {
		return leg.DurationTypical / 60
	}
	return leg.Duration / 60
}

// legGeometry склеивает геометрии шагов leg в одну линию
func legGeometry(leg domain.RouteLeg) domain.LineString {
	var line domain.LineString
	for _, step := range leg.Steps {
		line = append(line, step.Geometry.Coordinates...)
	}
	return line
}

// classifyCongestion сводит поэлементные аннотации загруженности к уровню сегмента.
// Взвешенная доля: тяжёлые значения с весом 1, умеренные - 0.5, от общего числа
// элементов (включая неразмеченные).
func classifyCongestion(annotation *domain.LegAnnotation) domain.CongestionLevel {
	if annotation == nil || len(annotation.Congestion) == 0 {
		return domain.CongestionUnknown
	}

	var heavyOrSevere, moderate int
	for _, value := range annotation.Congestion {
		switch value {
		case "heavy", "severe":
			heavyOrSevere++
		case "moderate":
			moderate++
		}
	}

	ratio := (float64(heavyOrSevere) + 0.5*float64(moderate)) / float64(len(annotation.Congestion))
	switch {
	case ratio > 0.5:
		return domain.CongestionHeavy
	case ratio > 0.25:
		return domain.CongestionModerate
	default:
		return domain.CongestionLow
	}
}

// thinWaypoints сокращает список точек до max, сохраняя первую и последнюю и
// равномерно выбирая остальные
func thinWaypoints(waypoints []waypoint, max int) []waypoint {
	if len(waypoints) <= max {
		return waypoints
	}

	thinned := make([]waypoint, 0, max)
	for i := 0; i < max; i++ {
		idx := i * (len(waypoints) - 1) / (max - 1)
		thinned = append(thinned, waypoints[idx])
	}
	return thinned
}

// coordKey - ключ кеша: упорядоченная последовательность координат
func coordKey(waypoints []waypoint) string {
	parts := make([]string, len(waypoints))
	for i, wp := range waypoints {
		parts[i] = fmt.Sprintf("%.6f,%.6f", wp.coord.Lng, wp.coord.Lat)
	}
	return strings.Join(parts, ";")
}
