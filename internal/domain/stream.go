package domain

import "github.com/google/uuid"

// Stream names (должны совпадать с backend поездок)
const (
	StreamItineraryChanged = "stream:itinerary:changed"
	StreamTripPlanned      = "stream:trip:planned"
)

// ItineraryChangedEvent - входящее событие об изменении маршрута поездки
type ItineraryChangedEvent struct {
	TripID uuid.UUID `json:"trip_id"`
	Reason string    `json:"reason,omitempty"`
}

// TripPlannedEvent - результат пересчёта плана поездки
type TripPlannedEvent struct {
	TripID             uuid.UUID  `json:"trip_id"`
	Fingerprint        string     `json:"fingerprint"`
	GeocodedActivities int        `json:"geocoded_activities"`
	RoutedDays         int        `json:"routed_days"`
	UnroutedDays       int        `json:"unrouted_days"`
	Stats              *TripStats `json:"stats,omitempty"`
	Error              string     `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data map[string]interface{}
}
