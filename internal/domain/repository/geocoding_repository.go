package repository

import (
	"context"

	"github.com/itinerary-microservice/internal/domain"
)

// GeocodeOptions - параметры запроса прямого геокодинга
type GeocodeOptions struct {
	Limit     int
	Types     []string           // ограничение типов результата (place, region, country, locality, poi...)
	BBox      []float64          // [minLng, minLat, maxLng, maxLat], nil - без ограничения
	Proximity *domain.Coordinate // смещение ранжирования к точке
}

// GeocodingRepository - прямой геокодинг через внешний провайдер
type GeocodingRepository interface {
	// ForwardGeocode возвращает кандидатов в порядке релевантности (может быть пустым)
	ForwardGeocode(ctx context.Context, query string, opts GeocodeOptions) ([]domain.GeocodeFeature, error)
}
