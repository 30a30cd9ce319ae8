package domain

// Типы ответов Mapbox API (Geocoding v5, Directions v5, Optimized Trips v1)

// GeocodeFeature - один кандидат геокодинга
type GeocodeFeature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"` // [lng, lat]
}

// GeocodeResponse - ответ Geocoding API, кандидаты отсортированы по релевантности
type GeocodeResponse struct {
	Features []GeocodeFeature `json:"features"`
}

// Geometry - GeoJSON LineString
type Geometry struct {
	Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
	Type        string      `json:"type"`
}

// RouteStep - шаг манёвра внутри leg
type RouteStep struct {
	Distance float64  `json:"distance"` // meters
	Duration float64  `json:"duration"` // seconds
	Geometry Geometry `json:"geometry"`
}

// LegAnnotation - поэлементные аннотации вдоль геометрии leg
type LegAnnotation struct {
	Congestion []string `json:"congestion"`
}

// RouteLeg - участок маршрута между соседними waypoints
type RouteLeg struct {
	Distance        float64        `json:"distance"`
	Duration        float64        `json:"duration"`
	DurationTypical float64        `json:"duration_typical"`
	Summary         string         `json:"summary"`
	Steps           []RouteStep    `json:"steps"`
	Annotation      *LegAnnotation `json:"annotation,omitempty"`
}

// MapboxRoute - маршрут целиком
type MapboxRoute struct {
	Distance        float64    `json:"distance"`
	Duration        float64    `json:"duration"`
	DurationTypical float64    `json:"duration_typical"`
	Geometry        Geometry   `json:"geometry"`
	Legs            []RouteLeg `json:"legs"`
}

// DirectionsResponse - ответ Directions API
type DirectionsResponse struct {
	Code   string        `json:"code"`
	Routes []MapboxRoute `json:"routes"`
}

// TripWaypoint - входная точка с её позицией в оптимизированном порядке.
// WaypointIndex - позиция i-й входной координаты в порядке объезда.
type TripWaypoint struct {
	WaypointIndex int       `json:"waypoint_index"`
	TripsIndex    int       `json:"trips_index"`
	Name          string    `json:"name"`
	Location      []float64 `json:"location"`
}

// TripsResponse - ответ Optimized Trips API
type TripsResponse struct {
	Code      string         `json:"code"`
	Waypoints []TripWaypoint `json:"waypoints"`
	Trips     []MapboxRoute  `json:"trips"`
}
