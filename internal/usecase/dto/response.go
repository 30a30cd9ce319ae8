package dto

import (
	"github.com/google/uuid"
	"github.com/itinerary-microservice/internal/domain"
)

// TripPlanResponse - снимок плана поездки для клиента
type TripPlanResponse struct {
	TripID             uuid.UUID                 `json:"trip_id"`
	Destination        string                    `json:"destination"`
	ResolvedPlace      string                    `json:"resolved_place,omitempty"`
	GeocodedActivities []domain.GeocodedActivity `json:"geocoded_activities"`
	DayRoutes          map[int]*domain.DayRoute  `json:"day_routes"`
	UnroutedDays       []int                     `json:"unrouted_days,omitempty"`
	Stats              domain.TripStats          `json:"stats"`
	Fingerprint        string                    `json:"fingerprint"`
	Loading            bool                      `json:"loading"`

	RequestedActivities  int `json:"requested_activities"`
	AdmissibleActivities int `json:"admissible_activities"`
}

// NewTripPlanResponse конвертирует доменный снимок плана в ответ API
func NewTripPlanResponse(plan *domain.TripPlan) *TripPlanResponse {
	resp := &TripPlanResponse{
		TripID:             plan.TripID,
		Destination:        plan.Destination,
		GeocodedActivities: plan.GeocodedActivities,
		DayRoutes:          plan.DayRoutes,
		UnroutedDays:       plan.UnroutedDays,
		Stats:              plan.Stats,
		Fingerprint:        plan.Fingerprint,
		Loading:            plan.Loading,

		RequestedActivities:  plan.RequestedActivities,
		AdmissibleActivities: plan.AdmissibleActivities,
	}
	if plan.Anchor != nil {
		resp.ResolvedPlace = plan.Anchor.PlaceName
	}
	if resp.GeocodedActivities == nil {
		resp.GeocodedActivities = []domain.GeocodedActivity{}
	}
	if resp.DayRoutes == nil {
		resp.DayRoutes = map[int]*domain.DayRoute{}
	}
	return resp
}
