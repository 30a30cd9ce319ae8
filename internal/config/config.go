package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mapbox   MapboxConfig
	Planner  PlannerConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// MapboxConfig - доступ к Mapbox API (геокодинг, directions, optimized trips)
type MapboxConfig struct {
	AccessToken    string
	BaseURL        string
	DrivingProfile string
	RequestTimeout int // seconds
}

// PlannerConfig - параметры пайплайна геокодинга и построения маршрутов
type PlannerConfig struct {
	MaxRadiusKm           float64 // максимальное удаление точки от якоря назначения
	BBoxDeltaDeg          float64 // полуширина bounding box для первой фазы геокодинга
	GeocodeLimit          int     // количество кандидатов на запрос геокодинга
	GeocodeBatchSize      int     // параллельных геокод-запросов в одной пачке
	OptimizerMaxWaypoints int     // лимит точек Optimized Trips API
	DirectionsMaxWaypoints int    // лимит точек Directions API (после прореживания)
	DepartureHour         int     // час отправления для depart_at
	TrafficHorizonDays    int     // сдвиг даты для оценки трафика за горизонтом прогноза
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Mapbox: MapboxConfig{
			AccessToken:    viper.GetString("MAPBOX_ACCESS_TOKEN"),
			BaseURL:        viper.GetString("MAPBOX_BASE_URL"),
			DrivingProfile: viper.GetString("MAPBOX_DRIVING_PROFILE"),
			RequestTimeout: viper.GetInt("MAPBOX_REQUEST_TIMEOUT"),
		},
		Planner: PlannerConfig{
			MaxRadiusKm:            viper.GetFloat64("PLANNER_MAX_RADIUS_KM"),
			BBoxDeltaDeg:           viper.GetFloat64("PLANNER_BBOX_DELTA_DEG"),
			GeocodeLimit:           viper.GetInt("PLANNER_GEOCODE_LIMIT"),
			GeocodeBatchSize:       viper.GetInt("PLANNER_GEOCODE_BATCH_SIZE"),
			OptimizerMaxWaypoints:  viper.GetInt("PLANNER_OPTIMIZER_MAX_WAYPOINTS"),
			DirectionsMaxWaypoints: viper.GetInt("PLANNER_DIRECTIONS_MAX_WAYPOINTS"),
			DepartureHour:          viper.GetInt("PLANNER_DEPARTURE_HOUR"),
			TrafficHorizonDays:     viper.GetInt("PLANNER_TRAFFIC_HORIZON_DAYS"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	// Set default values if not provided
	if cfg.Mapbox.BaseURL == "" {
		cfg.Mapbox.BaseURL = "https://api.mapbox.com"
	}
	if cfg.Mapbox.DrivingProfile == "" {
		cfg.Mapbox.DrivingProfile = "mapbox/driving-traffic"
	}
	if cfg.Mapbox.RequestTimeout == 0 {
		cfg.Mapbox.RequestTimeout = 15
	}
	if cfg.Planner.MaxRadiusKm == 0 {
		cfg.Planner.MaxRadiusKm = 25
	}
	if cfg.Planner.BBoxDeltaDeg == 0 {
		cfg.Planner.BBoxDeltaDeg = 0.3
	}
	if cfg.Planner.GeocodeLimit == 0 {
		cfg.Planner.GeocodeLimit = 3
	}
	if cfg.Planner.GeocodeBatchSize == 0 {
		cfg.Planner.GeocodeBatchSize = 5
	}
	if cfg.Planner.OptimizerMaxWaypoints == 0 {
		cfg.Planner.OptimizerMaxWaypoints = 12
	}
	if cfg.Planner.DirectionsMaxWaypoints == 0 {
		cfg.Planner.DirectionsMaxWaypoints = 25
	}
	if cfg.Planner.DepartureHour == 0 {
		cfg.Planner.DepartureHour = 9
	}
	if cfg.Planner.TrafficHorizonDays == 0 {
		cfg.Planner.TrafficHorizonDays = 2
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "itinerary-replan-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
