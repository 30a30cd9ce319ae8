package domain

// Coordinate - географическая точка
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LineString - геометрия в порядке GeoJSON: [lng, lat]
type LineString [][]float64

// Anchor - каноническая координата назначения поездки.
// Все проверки удалённости считаются от неё; заменяется целиком при смене назначения.
type Anchor struct {
	Coordinate
	PlaceName string `json:"place_name"`
}

// CongestionLevel - уровень загруженности сегмента маршрута
type CongestionLevel string

const (
	CongestionLow      CongestionLevel = "low"
	CongestionModerate CongestionLevel = "moderate"
	CongestionHeavy    CongestionLevel = "heavy"
	CongestionSevere   CongestionLevel = "severe"
	CongestionUnknown  CongestionLevel = "unknown"
)

// RouteSegment - один переезд между соседними точками дневного маршрута
type RouteSegment struct {
	FromLabel          string          `json:"from_label"`
	ToLabel            string          `json:"to_label"`
	DistanceKm         float64         `json:"distance_km"`
	DurationMin        float64         `json:"duration_min"`
	DurationTrafficMin float64         `json:"duration_traffic_min"`
	Congestion         CongestionLevel `json:"congestion"`
	Geometry           LineString      `json:"geometry,omitempty"`
}

// DayRoute - маршрут одного дня (строится для дней с >= 2 геокодированными точками)
type DayRoute struct {
	Geometry           LineString     `json:"geometry,omitempty"`
	DistanceKm         float64        `json:"distance_km"`
	DurationMin        float64        `json:"duration_min"`
	DurationTrafficMin float64        `json:"duration_traffic_min"`
	IsTrafficEstimate  bool           `json:"is_traffic_estimate"`
	IsOptimized        bool           `json:"is_optimized"`
	Segments           []RouteSegment `json:"segments"`
	WaypointOrder      []int          `json:"waypoint_order,omitempty"`
}

// TripStats - агрегаты по всем дневным маршрутам; всегда пересчитываются заново
type TripStats struct {
	TotalKm         float64 `json:"total_km"`
	TotalMin        float64 `json:"total_min"`
	TotalTrafficMin float64 `json:"total_traffic_min"`
	IsFallback      bool    `json:"is_fallback"`
}
