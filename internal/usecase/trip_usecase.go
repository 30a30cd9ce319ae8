package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
	"go.uber.org/zap"
)

// TripPlannerUseCase - оркестратор пайплайна планирования: резолвинг назначения,
// геокодинг активностей, помаршрутный расчёт дней, агрегаты и снимок плана.
// Хранит по одному снимку на поездку; пересчёт запускается только при изменении
// отпечатка маршрута, гонки завершений разрешаются по принципу last-writer-wins.
type TripPlannerUseCase struct {
	geocodeUC *GeocodeUseCase
	routeUC   *RouteUseCase
	logger    *zap.Logger

	mu    sync.Mutex
	plans map[uuid.UUID]*domain.TripPlan
}

// NewTripPlannerUseCase создает новый TripPlannerUseCase
func NewTripPlannerUseCase(
	geocodeUC *GeocodeUseCase,
	routeUC *RouteUseCase,
	logger *zap.Logger,
) *TripPlannerUseCase {
	return &TripPlannerUseCase{
		geocodeUC: geocodeUC,
		routeUC:   routeUC,
		logger:    logger,
		plans:     make(map[uuid.UUID]*domain.TripPlan),
	}
}

// GetPlan возвращает текущий снимок плана поездки
func (uc *TripPlannerUseCase) GetPlan(tripID uuid.UUID) (*domain.TripPlan, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	plan, ok := uc.plans[tripID]
	return plan, ok
}

// PlanTrip выполняет полный пересчёт плана поездки.
// Если отпечаток маршрута не изменился с прошлого запуска, возвращается готовый
// снимок без внешних вызовов. Нерезолвящееся назначение - фатальная ошибка:
// частичный план не сохраняется.
func (uc *TripPlannerUseCase) PlanTrip(
	ctx context.Context,
	trip *domain.Trip,
	activities []domain.Activity,
) (*domain.TripPlan, error) {
	fingerprint := Fingerprint(activities)
	admissible := uc.countAdmissible(activities)

	// Отпечаток не видит правок строк локаций, поэтому изменение числа
	// допустимых активностей - независимый триггер пересчёта
	uc.mu.Lock()
	if existing, ok := uc.plans[trip.ID]; ok && !existing.Loading &&
		existing.Fingerprint == fingerprint && existing.AdmissibleActivities == admissible {
		uc.mu.Unlock()
		uc.logger.Info("Itinerary unchanged, returning existing plan",
			zap.String("trip_id", trip.ID.String()),
			zap.String("fingerprint", fingerprint))
		return existing, nil
	}
	// Плейсхолдер фиксирует наш отпечаток: если до завершения стартует более
	// новый пересчёт, этот результат будет признан устаревшим и отброшен
	uc.plans[trip.ID] = &domain.TripPlan{
		TripID:      trip.ID,
		Destination: trip.Destination,
		Fingerprint: fingerprint,
		Loading:     true,
	}
	uc.mu.Unlock()

	uc.routeUC.ClearCache()

	plan, err := uc.computePlan(ctx, trip, activities, fingerprint)
	if err != nil {
		uc.mu.Lock()
		if current, ok := uc.plans[trip.ID]; ok && current.Fingerprint == fingerprint {
			delete(uc.plans, trip.ID)
		}
		uc.mu.Unlock()
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	current, ok := uc.plans[trip.ID]
	if !ok || current.Fingerprint != fingerprint {
		uc.logger.Warn("Discarding stale plan result",
			zap.String("trip_id", trip.ID.String()),
			zap.String("fingerprint", fingerprint))
		return plan, nil
	}
	uc.plans[trip.ID] = plan

	return plan, nil
}

func (uc *TripPlannerUseCase) computePlan(
	ctx context.Context,
	trip *domain.Trip,
	activities []domain.Activity,
	fingerprint string,
) (*domain.TripPlan, error) {
	anchor, err := uc.geocodeUC.ResolveDestination(ctx, trip.Destination)
	if err != nil {
		uc.logger.Error("Trip planning aborted: destination unresolvable",
			zap.String("trip_id", trip.ID.String()),
			zap.String("destination", trip.Destination),
			zap.Error(err))
		return nil, err
	}

	geocoded := uc.geocodeUC.GeocodeActivities(ctx, anchor, activities)

	plan := &domain.TripPlan{
		TripID:               trip.ID,
		Destination:          trip.Destination,
		Anchor:               anchor,
		GeocodedActivities:   geocoded,
		DayRoutes:            make(map[int]*domain.DayRoute),
		Fingerprint:          fingerprint,
		PlannedAt:            time.Now(),
		RequestedActivities:  len(activities),
		AdmissibleActivities: uc.countAdmissible(activities),
	}

	// Дни считаются последовательно: падение одного дня не трогает остальные
	for _, dayNumber := range dayNumbers(geocoded) {
		points := dayPoints(geocoded, dayNumber)
		if len(points) < 2 {
			uc.logger.Debug("Day skipped: fewer than 2 geocoded points",
				zap.String("trip_id", trip.ID.String()),
				zap.Int("day", dayNumber),
				zap.Int("points", len(points)))
			continue
		}

		dayRoute, err := uc.routeUC.ComputeDayRoute(ctx, trip.DateForDay(dayNumber), points)
		if err != nil {
			plan.UnroutedDays = append(plan.UnroutedDays, dayNumber)
			continue
		}

		plan.DayRoutes[dayNumber] = dayRoute
		plan.Stats.TotalKm += dayRoute.DistanceKm
		plan.Stats.TotalMin += dayRoute.DurationMin
		plan.Stats.TotalTrafficMin += dayRoute.DurationTrafficMin
		if dayRoute.IsTrafficEstimate {
			plan.Stats.IsFallback = true
		}
	}

	uc.logger.Info("Trip plan computed",
		zap.String("trip_id", trip.ID.String()),
		zap.String("fingerprint", fingerprint),
		zap.Int("geocoded_activities", len(geocoded)),
		zap.Int("routed_days", len(plan.DayRoutes)),
		zap.Ints("unrouted_days", plan.UnroutedDays),
		zap.Float64("total_km", plan.Stats.TotalKm))

	return plan, nil
}

// countAdmissible - число активностей, прошедших фильтр допустимости
func (uc *TripPlannerUseCase) countAdmissible(activities []domain.Activity) int {
	count := 0
	for _, activity := range activities {
		if uc.geocodeUC.filter.IsAdmissible(activity) {
			count++
		}
	}
	return count
}

// Fingerprint - отпечаток маршрута поездки. Учитываются только поля, влияющие
// на результат планирования; правки описаний и заметок пересчёт не запускают.
func Fingerprint(activities []domain.Activity) string {
	h := sha256.New()
	for _, activity := range activities {
		fmt.Fprintf(h, "%s|%t|%d\n", activity.ID, activity.Completed, activity.SortOrder)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// dayNumbers - отсортированные номера дней, встречающиеся среди активностей
func dayNumbers(geocoded []domain.GeocodedActivity) []int {
	seen := make(map[int]struct{})
	var days []int
	for _, activity := range geocoded {
		if _, ok := seen[activity.DayNumber]; ok {
			continue
		}
		seen[activity.DayNumber] = struct{}{}
		days = append(days, activity.DayNumber)
	}
	sort.Ints(days)
	return days
}

// dayPoints - точки одного дня в порядке сортировки маршрута
func dayPoints(geocoded []domain.GeocodedActivity, dayNumber int) []domain.GeocodedActivity {
	var points []domain.GeocodedActivity
	for _, activity := range geocoded {
		if activity.DayNumber == dayNumber {
			points = append(points, activity)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].SortOrder < points[j].SortOrder
	})
	return points
}
