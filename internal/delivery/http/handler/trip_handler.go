package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain/repository"
	"github.com/itinerary-microservice/internal/pkg/errors"
	"github.com/itinerary-microservice/internal/pkg/utils"
	"github.com/itinerary-microservice/internal/pkg/validator"
	"github.com/itinerary-microservice/internal/usecase"
	"github.com/itinerary-microservice/internal/usecase/dto"
	"go.uber.org/zap"
)

// TripHandler - обработчик запросов планирования поездок
type TripHandler struct {
	registry *usecase.PlannerRegistry
	tripRepo repository.TripRepository
	logger   *zap.Logger
}

// NewTripHandler - создание нового TripHandler
func NewTripHandler(
	registry *usecase.PlannerRegistry,
	tripRepo repository.TripRepository,
	logger *zap.Logger,
) *TripHandler {
	return &TripHandler{
		registry: registry,
		tripRepo: tripRepo,
		logger:   logger,
	}
}

// PlanTrip godoc
// @Summary Планирование поездки
// @Description Геокодирует активности маршрута вблизи назначения и строит оптимизированные дневные автомобильные маршруты с учётом трафика. Пересчёт выполняется только если состав или порядок маршрута изменились с прошлого запуска.
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body dto.TripPlanRequest true "Поездка с маршрутом по дням"
// @Success 200 {object} utils.SuccessResponse{data=dto.TripPlanResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/trips/plan [post]
func (h *TripHandler) PlanTrip(c *fiber.Ctx) error {
	start := time.Now()

	var req dto.TripPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	trip, activities, err := req.ToDomain()
	if err != nil {
		return utils.SendError(c, err)
	}

	plan, err := h.registry.Session(trip.ID).PlanTrip(c.Context(), trip, activities)
	if err != nil {
		h.logger.Warn("Trip planning failed",
			zap.String("trip_id", req.TripID),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	resp := dto.NewTripPlanResponse(plan)
	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:    len(resp.GeocodedActivities),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetPlan godoc
// @Summary Актуальный план поездки
// @Description Загружает поездку и её маршрут из базы и возвращает план. Если маршрут не менялся с прошлого расчёта, отдаётся готовый снимок без обращений к внешнему провайдеру.
// @Tags Trips
// @Accept json
// @Produce json
// @Param id path string true "Идентификатор поездки (UUID)"
// @Success 200 {object} utils.SuccessResponse{data=dto.TripPlanResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/trips/{id}/plan [get]
func (h *TripHandler) GetPlan(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"id": c.Params("id"),
		}))
	}

	trip, err := h.tripRepo.GetTrip(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	activities, err := h.tripRepo.ListActivities(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	plan, err := h.registry.Session(trip.ID).PlanTrip(c.Context(), trip, activities)
	if err != nil {
		h.logger.Warn("Trip plan refresh failed",
			zap.String("trip_id", id.String()),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.NewTripPlanResponse(plan), nil)
}
