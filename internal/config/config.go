package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NewRelic    NewRelicConfig
	Logger      LoggerConfig
	Maps        MapsConfig
	Pricing     PricingConfig
	Currency    CurrencyConfig
	Kafka       KafkaConfig
	Idempotency IdempotencyConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string
	File   string
}

// MapsConfig holds Google Maps Platform configuration.
// An empty APIKey disables the mapping collaborator; distances then come from the fallback estimate.
type MapsConfig struct {
	APIKey   string
	BaseURL  string
	Region   string
	Language string
	Timeout  time.Duration
}

// PricingConfig holds the engine-wide pricing settings.
type PricingConfig struct {
	Timezone         string
	NightStartHour   int
	NightEndHour     int
	AirportRadiusKm  float64
	Airports         []AirportConfig
	MaxParallelLoads int
	DistanceCacheTTL time.Duration
}

// AirportConfig is a known airport used to classify pickup and drop-off points.
type AirportConfig struct {
	Code string
	Lat  float64
	Lng  float64
}

// CurrencyConfig holds exchange rate refresh settings.
type CurrencyConfig struct {
	RefreshTTL  time.Duration
	FeedURL     string
	FeedTimeout time.Duration
}

// KafkaConfig holds quote event publishing configuration.
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	QuotesTopic string
}

// IdempotencyConfig holds settings for replaying admin writes.
type IdempotencyConfig struct {
	TTL time.Duration
}

// defaultAirports lists the London airports served out of the box.
const defaultAirports = "LHR:51.4700:-0.4543,LGW:51.1537:-0.1821,LCY:51.5048:0.0495,STN:51.8860:0.2389,LTN:51.8747:-0.3683"

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "transfers"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "transfer-pricing-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Maps: MapsConfig{
			APIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:  getEnv("GOOGLE_MAPS_BASE_URL", ""),
			Region:   getEnv("GOOGLE_MAPS_REGION", "uk"),
			Language: getEnv("GOOGLE_MAPS_LANGUAGE", "en-GB"),
			Timeout:  getDurationEnv("GOOGLE_MAPS_TIMEOUT", 3*time.Second),
		},
		Pricing: PricingConfig{
			Timezone:         getEnv("PRICING_TIMEZONE", "Europe/London"),
			NightStartHour:   getIntEnv("PRICING_NIGHT_START_HOUR", 22),
			NightEndHour:     getIntEnv("PRICING_NIGHT_END_HOUR", 6),
			AirportRadiusKm:  getFloatEnv("PRICING_AIRPORT_RADIUS_KM", 3),
			Airports:         parseAirports(getEnv("PRICING_AIRPORTS", defaultAirports)),
			MaxParallelLoads: getIntEnv("PRICING_MAX_PARALLEL_LOADS", 8),
			DistanceCacheTTL: getDurationEnv("PRICING_DISTANCE_CACHE_TTL", 24*time.Hour),
		},
		Currency: CurrencyConfig{
			RefreshTTL:  getDurationEnv("CURRENCY_REFRESH_TTL", time.Hour),
			FeedURL:     getEnv("CURRENCY_FEED_URL", ""),
			FeedTimeout: getDurationEnv("CURRENCY_FEED_TIMEOUT", 5*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:     getBoolEnv("KAFKA_ENABLED", false),
			Brokers:     getListEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			QuotesTopic: getEnv("KAFKA_QUOTES_TOPIC", "quote.issued"),
		},
		Idempotency: IdempotencyConfig{
			TTL: getDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		},
	}
}

// parseAirports reads "CODE:LAT:LNG" entries separated by commas. Malformed entries are skipped.
func parseAirports(raw string) []AirportConfig {
	var airports []AirportConfig
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 || parts[0] == "" {
			continue
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			continue
		}
		airports = append(airports, AirportConfig{Code: strings.ToUpper(parts[0]), Lat: lat, Lng: lng})
	}
	return airports
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}
