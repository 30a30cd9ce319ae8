package usecase

import (
	"sync"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/config"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	"go.uber.org/zap"
)

// PlannerRegistry - реестр сессий планирования по поездкам.
// Каждая поездка получает собственную сессию с изолированными кешами геокодинга
// и маршрутов: смена назначения или сброс кеша одной поездки не задевает
// остальные. Сессии создаются лениво при первом обращении.
type PlannerRegistry struct {
	geocodingRepo repository.GeocodingRepository
	routingRepo   repository.RoutingRepository
	filter        *AdmissibilityFilter
	logger        *zap.Logger
	cfg           config.PlannerConfig

	mu       sync.Mutex
	sessions map[uuid.UUID]*TripPlannerUseCase
}

// NewPlannerRegistry создает новый PlannerRegistry
func NewPlannerRegistry(
	geocodingRepo repository.GeocodingRepository,
	routingRepo repository.RoutingRepository,
	logger *zap.Logger,
	cfg config.PlannerConfig,
) *PlannerRegistry {
	return &PlannerRegistry{
		geocodingRepo: geocodingRepo,
		routingRepo:   routingRepo,
		filter:        NewAdmissibilityFilter(logger),
		logger:        logger,
		cfg:           cfg,
		sessions:      make(map[uuid.UUID]*TripPlannerUseCase),
	}
}

// Session возвращает сессию планирования поездки, создавая её при необходимости
func (r *PlannerRegistry) Session(tripID uuid.UUID) *TripPlannerUseCase {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[tripID]; ok {
		return session
	}

	geocodeUC := NewGeocodeUseCase(r.geocodingRepo, r.filter, r.logger, r.cfg)
	routeUC := NewRouteUseCase(r.routingRepo, r.logger, r.cfg)
	session := NewTripPlannerUseCase(geocodeUC, routeUC, r.logger)
	r.sessions[tripID] = session

	r.logger.Debug("Planner session created",
		zap.String("trip_id", tripID.String()),
		zap.Int("sessions", len(r.sessions)))

	return session
}

// GetPlan возвращает текущий снимок плана поездки, если сессия существует
func (r *PlannerRegistry) GetPlan(tripID uuid.UUID) (*domain.TripPlan, bool) {
	r.mu.Lock()
	session, ok := r.sessions[tripID]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return session.GetPlan(tripID)
}
