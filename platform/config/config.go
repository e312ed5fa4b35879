// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// GeocoderConfig provides settings for the Nominatim and Overpass clients.
type GeocoderConfig interface {
	GetNominatimBaseURL() string
	GetOverpassBaseURL() string
	GetGeocoderContact() string
	GetGeocoderMinInterval() time.Duration
}

// SchedulerConfig provides settings for the asynq background job layer.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// DiscoveryConfig provides the default knobs for discovery and lead promotion runs.
type DiscoveryConfig interface {
	GetDiscoveryRadiusMiles() float64
	GetDiscoveryMaxProperties() int
	GetLeadMinDamageProbability() float64
	GetLeadPromotionLimit() int
	GetDefaultPropertyValue() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	NominatimBaseURL         string
	OverpassBaseURL          string
	GeocoderContact          string
	GeocoderMinInterval      time.Duration
	GeocodeCacheSize         int
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	DiscoveryRadiusMiles     float64
	DiscoveryMaxProperties   int
	LeadMinDamageProbability float64
	LeadPromotionLimit       int
	DefaultPropertyValue     int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// GeocoderConfig implementation
func (c *Config) GetNominatimBaseURL() string           { return c.NominatimBaseURL }
func (c *Config) GetOverpassBaseURL() string            { return c.OverpassBaseURL }
func (c *Config) GetGeocoderContact() string            { return c.GeocoderContact }
func (c *Config) GetGeocoderMinInterval() time.Duration { return c.GeocoderMinInterval }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// IsSchedulerEnabled reports whether background jobs are configured.
func (c *Config) IsSchedulerEnabled() bool { return c.RedisURL != "" }

// DiscoveryConfig implementation
func (c *Config) GetDiscoveryRadiusMiles() float64     { return c.DiscoveryRadiusMiles }
func (c *Config) GetDiscoveryMaxProperties() int       { return c.DiscoveryMaxProperties }
func (c *Config) GetLeadMinDamageProbability() float64 { return c.LeadMinDamageProbability }
func (c *Config) GetLeadPromotionLimit() int           { return c.LeadPromotionLimit }
func (c *Config) GetDefaultPropertyValue() int         { return c.DefaultPropertyValue }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		NominatimBaseURL:         getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		OverpassBaseURL:          getEnv("OVERPASS_BASE_URL", "https://overpass-api.de/api/interpreter"),
		GeocoderContact:          getEnv("GEOCODER_CONTACT", ""),
		GeocoderMinInterval:      mustDuration(getEnv("GEOCODER_MIN_INTERVAL", "1100ms")),
		GeocodeCacheSize:         mustInt(getEnv("GEOCODE_CACHE_SIZE", "2048")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		DiscoveryRadiusMiles:     mustFloat(getEnv("DISCOVERY_RADIUS_MILES", "5")),
		DiscoveryMaxProperties:   mustInt(getEnv("DISCOVERY_MAX_PROPERTIES", "100")),
		LeadMinDamageProbability: mustFloat(getEnv("LEAD_MIN_DAMAGE_PROBABILITY", "0.3")),
		LeadPromotionLimit:       mustInt(getEnv("LEAD_PROMOTION_LIMIT", "100")),
		DefaultPropertyValue:     mustInt(getEnv("DEFAULT_PROPERTY_VALUE", "250000")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	// Nominatim's usage policy requires an identifying user-agent with a
	// contact address. Refuse to start without one rather than risk an IP ban.
	if cfg.GeocoderContact == "" {
		return nil, fmt.Errorf("GEOCODER_CONTACT is required (e.g. \"hail-tracker/1.0 (ops@example.com)\")")
	}
	if cfg.GeocoderMinInterval < 1100*time.Millisecond {
		cfg.GeocoderMinInterval = 1100 * time.Millisecond
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
