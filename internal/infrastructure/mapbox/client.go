package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/itinerary-microservice/internal/config"
	"github.com/itinerary-microservice/internal/domain"
	"github.com/itinerary-microservice/internal/domain/repository"
	"go.uber.org/zap"
)

const departAtLayout = "2006-01-02T15:04"

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	profile     string
	logger      *zap.Logger
}

// Client объединяет геокодинг и построение маршрутов одним Mapbox-клиентом
type Client interface {
	repository.GeocodingRepository
	repository.RoutingRepository
}

// NewMapboxClient создает новый клиент для Mapbox API
func NewMapboxClient(cfg *config.MapboxConfig, logger *zap.Logger) Client {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		profile:     cfg.DrivingProfile,
		logger:      logger,
	}
}

// ForwardGeocode запрашивает кандидатов у Geocoding API
func (c *client) ForwardGeocode(ctx context.Context, query string, opts repository.GeocodeOptions) ([]domain.GeocodeFeature, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Set("access_token", c.accessToken)
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if len(opts.Types) > 0 {
		params.Set("types", strings.Join(opts.Types, ","))
	}
	if len(opts.BBox) == 4 {
		params.Set("bbox", fmt.Sprintf("%f,%f,%f,%f", opts.BBox[0], opts.BBox[1], opts.BBox[2], opts.BBox[3]))
	}
	if opts.Proximity != nil {
		params.Set("proximity", fmt.Sprintf("%f,%f", opts.Proximity.Lng, opts.Proximity.Lat))
	}

	reqURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		c.baseURL,
		url.PathEscape(query),
		params.Encode(),
	)

	c.logger.Debug("Calling Mapbox Geocoding API",
		zap.String("query", query),
		zap.Int("limit", opts.Limit),
		zap.Bool("bounded", len(opts.BBox) == 4))

	var geocodeResp domain.GeocodeResponse
	if err := c.doGet(ctx, reqURL, &geocodeResp); err != nil {
		return nil, err
	}

	return geocodeResp.Features, nil
}

// GetOptimizedTrip запрашивает Optimized Trips API: первая и последняя точки
// фиксированы, промежуточные переупорядочиваются, профиль с учётом трафика
func (c *client) GetOptimizedTrip(ctx context.Context, coords []domain.Coordinate) (*domain.TripsResponse, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("at least 2 coordinates required")
	}

	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("source", "first")
	params.Set("destination", "last")
	params.Set("roundtrip", "false")
	params.Set("steps", "true")
	params.Set("geometries", "geojson")
	params.Set("overview", "full")
	params.Set("annotations", "congestion")

	reqURL := fmt.Sprintf("%s/optimized-trips/v1/%s/%s?%s",
		c.baseURL,
		c.profile,
		coordinatesPath(coords),
		params.Encode(),
	)

	c.logger.Debug("Calling Mapbox Optimized Trips API",
		zap.Int("waypoints", len(coords)))

	var tripsResp domain.TripsResponse
	if err := c.doGet(ctx, reqURL, &tripsResp); err != nil {
		return nil, err
	}

	if tripsResp.Code != "Ok" {
		c.logger.Warn("Mapbox Optimized Trips returned non-Ok code",
			zap.String("code", tripsResp.Code))
		return nil, fmt.Errorf("mapbox API returned code: %s", tripsResp.Code)
	}

	return &tripsResp, nil
}

// GetDirections запрашивает Directions API в заданном порядке точек
func (c *client) GetDirections(ctx context.Context, coords []domain.Coordinate, departAt time.Time) (*domain.DirectionsResponse, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("at least 2 coordinates required")
	}

	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("steps", "true")
	params.Set("geometries", "geojson")
	params.Set("overview", "full")
	params.Set("annotations", "congestion")
	if !departAt.IsZero() {
		params.Set("depart_at", departAt.Format(departAtLayout))
	}

	reqURL := fmt.Sprintf("%s/directions/v5/%s/%s?%s",
		c.baseURL,
		c.profile,
		coordinatesPath(coords),
		params.Encode(),
	)

	c.logger.Debug("Calling Mapbox Directions API",
		zap.Int("waypoints", len(coords)),
		zap.Time("depart_at", departAt))

	var directionsResp domain.DirectionsResponse
	if err := c.doGet(ctx, reqURL, &directionsResp); err != nil {
		return nil, err
	}

	if directionsResp.Code != "Ok" {
		c.logger.Warn("Mapbox Directions returned non-Ok code",
			zap.String("code", directionsResp.Code))
		return nil, fmt.Errorf("mapbox API returned code: %s", directionsResp.Code)
	}

	return &directionsResp, nil
}

// doGet выполняет GET запрос и декодирует JSON ответ
func (c *client) doGet(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("mapbox API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// coordinatesPath формирует сегмент пути "lng,lat;lng,lat;..."
func coordinatesPath(coords []domain.Coordinate) string {
	parts := make([]string, len(coords))
	for i, coord := range coords {
		parts[i] = fmt.Sprintf("%f,%f", coord.Lng, coord.Lat)
	}
	return strings.Join(parts, ";")
}
