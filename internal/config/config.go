package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "4000"
	defaultFlightBaseURL  = "https://test.api.amadeus.com"
	defaultHotelBaseURL   = "https://booking-com15.p.rapidapi.com"
	defaultMigrationsDir  = "migrations"
	defaultSearchCacheTTL = 5 * time.Minute
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port string

	FlightClientID     string
	FlightClientSecret string
	FlightBaseURL      string

	HotelHost    string
	HotelKey     string
	HotelBaseURL string

	// Optional backing services. Empty means disabled.
	RedisURL      string
	DatabaseURL   string
	MigrationsDir string

	BearerToken    string
	SearchCacheTTL time.Duration
	AllowedOrigins []string
}

// Load reads an optional .env file and returns a populated Config.
// Missing required variables are reported together in a single error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg := Config{
		Port:               getEnv("PORT", defaultPort),
		FlightClientID:     os.Getenv("AMADEUS_API_KEY"),
		FlightClientSecret: os.Getenv("AMADEUS_API_SECRET"),
		FlightBaseURL:      strings.TrimRight(getEnv("AMADEUS_BASE_URL", defaultFlightBaseURL), "/"),
		HotelHost:          os.Getenv("RAPIDAPI_HOST"),
		HotelKey:           os.Getenv("RAPIDAPI_KEY"),
		HotelBaseURL:       strings.TrimRight(getEnv("HOTEL_BASE_URL", defaultHotelBaseURL), "/"),
		RedisURL:           os.Getenv("REDIS_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", defaultMigrationsDir),
		BearerToken:        os.Getenv("API_BEARER_TOKEN"),
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	ttl, err := getEnvDuration("SEARCH_CACHE_TTL", defaultSearchCacheTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.SearchCacheTTL = ttl

	var missing []string
	for _, req := range []struct{ key, val string }{
		{"AMADEUS_API_KEY", cfg.FlightClientID},
		{"AMADEUS_API_SECRET", cfg.FlightClientSecret},
		{"RAPIDAPI_HOST", cfg.HotelHost},
		{"RAPIDAPI_KEY", cfg.HotelKey},
	} {
		if req.val == "" {
			missing = append(missing, req.key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
