package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string

	// Database
	DatabaseURL string

	// Geocoding providers (each optional; the chain skips unconfigured ones)
	GoogleMapsAPIKey  string
	MapboxAccessToken string
	NominatimBaseURL  string
	GeocodeTimeout    time.Duration
	GeocodeCacheTTL   time.Duration

	// Social media
	TwitterBearerToken string
	SocialCacheTTL     time.Duration

	// Official updates
	ScrapeTimeout   time.Duration
	UpdatesCacheTTL time.Duration

	// OTLP collector endpoint (empty disables tracing/metrics export)
	OTLPEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3001"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),

		// Database - DATABASE_URL wins, otherwise built from POSTGRES_* parts
		DatabaseURL: getDatabaseURL(),

		// Geocoding
		GoogleMapsAPIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
		MapboxAccessToken: getEnv("MAPBOX_ACCESS_TOKEN", ""),
		NominatimBaseURL:  getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeTimeout:    getEnvAsDuration("GEOCODE_TIMEOUT_SECONDS", 5*time.Second),
		GeocodeCacheTTL:   getEnvAsDuration("GEOCODE_CACHE_TTL_MINUTES", 60*time.Minute),

		// Social media
		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
		SocialCacheTTL:     getEnvAsDuration("SOCIAL_CACHE_TTL_MINUTES", 15*time.Minute),

		// Official updates
		ScrapeTimeout:   getEnvAsDuration("SCRAPE_TIMEOUT_SECONDS", 10*time.Second),
		UpdatesCacheTTL: getEnvAsDuration("UPDATES_CACHE_TTL_MINUTES", 30*time.Minute),

		// Telemetry
		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

// IsDevelopment reports whether the server runs in development mode.
// Error envelopes carry internal detail only in development.
func (c *Config) IsDevelopment() bool {
	return c.ServerEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsDuration reads an integer env var scaled by the unit implied by
// the key suffix (SECONDS or MINUTES).
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	unit := time.Minute
	if strings.HasSuffix(key, "SECONDS") {
		unit = time.Second
	}
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return time.Duration(intValue) * unit
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "disaster_response")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
