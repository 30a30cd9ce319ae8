package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/pkg/errors"
)

// TripPlanRequest - запрос на планирование поездки с маршрутом в теле
type TripPlanRequest struct {
	TripID      string          `json:"trip_id" validate:"required,uuid"`
	Destination string          `json:"destination" validate:"required,min=2,max=200"`
	StartDate   string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	Activities  []ActivityInput `json:"activities" validate:"required,min=1,max=500,dive"`
}

// ActivityInput - элемент маршрута в запросе
type ActivityInput struct {
	ID        string  `json:"id" validate:"required,uuid"`
	DayNumber int     `json:"day_number" validate:"required,min=1,max=60"`
	SortOrder int     `json:"sort_order" validate:"min=0"`
	Title     string  `json:"title" validate:"required,max=300"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=500"`
	ItemType  string  `json:"item_type" validate:"required,oneof=departure arrival hotel_checkin hotel_checkout activity meal transport free_time"`
	Completed bool    `json:"completed"`
}

// ToDomain конвертирует запрос в доменные модели
func (r TripPlanRequest) ToDomain() (*domain.Trip, []domain.Activity, error) {
	tripID, err := uuid.Parse(r.TripID)
	if err != nil {
		return nil, nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"trip_id": r.TripID,
		})
	}

	startDate, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return nil, nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"start_date": r.StartDate,
		})
	}

	trip := &domain.Trip{
		ID:          tripID,
		Destination: r.Destination,
		StartDate:   startDate,
	}

	activities := make([]domain.Activity, len(r.Activities))
	for i, input := range r.Activities {
		id, err := uuid.Parse(input.ID)
		if err != nil {
			return nil, nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"activity_id": input.ID,
			})
		}
		activities[i] = domain.Activity{
			ID:        id,
			DayNumber: input.DayNumber,
			SortOrder: input.SortOrder,
			Title:     input.Title,
			Location:  input.Location,
			ItemType:  domain.ItemType(input.ItemType),
			Completed: input.Completed,
		}
	}

	return trip, activities, nil
}
