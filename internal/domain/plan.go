package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripPlan - снимок результата планирования поездки.
// Снимок заменяется атомарно целиком; частично заполненные планы наружу не выходят.
type TripPlan struct {
	TripID             uuid.UUID          `json:"trip_id"`
	Destination        string             `json:"destination"`
	Anchor             *Anchor            `json:"anchor,omitempty"`
	GeocodedActivities []GeocodedActivity `json:"geocoded_activities"`
	DayRoutes          map[int]*DayRoute  `json:"day_routes"`
	UnroutedDays       []int              `json:"unrouted_days,omitempty"`
	Stats              TripStats          `json:"stats"`
	Fingerprint        string             `json:"fingerprint"`
	Loading            bool               `json:"loading"`
	PlannedAt          time.Time          `json:"planned_at"`

	// Сигнал полноты: сколько активностей запрошено и сколько прошло фильтр
	RequestedActivities  int `json:"requested_activities"`
	AdmissibleActivities int `json:"admissible_activities"`
}
