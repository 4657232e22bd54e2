// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Log         LogConfig
	Server      ServerConfig
	NATS        NATSConfig
	Tracker     TrackerConfig
	Facts       FactsConfig
	LLM         LLMConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// TrackerConfig holds position polling configuration
type TrackerConfig struct {
	Source         string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	TrailSize      int
	WhereTheISSURL string
	OpenNotifyURL  string
	TLELine1       string
	TLELine2       string
}

// FactsConfig holds fact refresh configuration
type FactsConfig struct {
	CatalogPath       string
	MovementThreshold float64
	RefreshInterval   time.Duration
	Cooldown          time.Duration
	GenerateTimeout   time.Duration
	RevealCharDelay   time.Duration
	MinDisplay        time.Duration
}

// LLMConfig holds language model configuration
type LLMConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	CacheTTL    time.Duration
	CacheSize   int
}

var validSources = map[string]bool{
	"wheretheiss": true,
	"opennotify":  true,
	"tle":         true,
}

// Load loads configuration from an optional .env file and environment variables
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	return FromEnv()
}

// FromEnv builds configuration from environment variables only
func FromEnv() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", true),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("NATS_EVENTS_TOPIC", "iss"),
		},
		Tracker: TrackerConfig{
			Source:         getEnv("POSITION_SOURCE", "wheretheiss"),
			PollInterval:   getEnvAsDuration("POSITION_POLL_INTERVAL", 5*time.Second),
			RequestTimeout: getEnvAsDuration("POSITION_REQUEST_TIMEOUT", 4*time.Second),
			TrailSize:      getEnvAsInt("POSITION_TRAIL_SIZE", 100),
			WhereTheISSURL: getEnv("POSITION_WHERETHEISS_URL", "https://api.wheretheiss.at/v1/satellites/25544"),
			OpenNotifyURL:  getEnv("POSITION_OPENNOTIFY_URL", "http://api.open-notify.org/iss-now.json"),
			TLELine1:       getEnv("ISS_TLE_LINE1", ""),
			TLELine2:       getEnv("ISS_TLE_LINE2", ""),
		},
		Facts: FactsConfig{
			CatalogPath:       getEnv("FACTS_CATALOG_PATH", ""),
			MovementThreshold: getEnvAsFloat("FACTS_MOVEMENT_THRESHOLD", 5.0),
			RefreshInterval:   getEnvAsDuration("FACTS_REFRESH_INTERVAL", 10*time.Second),
			Cooldown:          getEnvAsDuration("FACTS_COOLDOWN", 5*time.Minute),
			GenerateTimeout:   getEnvAsDuration("FACTS_GENERATE_TIMEOUT", 30*time.Second),
			RevealCharDelay:   getEnvAsDuration("FACTS_REVEAL_CHAR_DELAY", 30*time.Millisecond),
			MinDisplay:        getEnvAsDuration("FACTS_MIN_DISPLAY", 8*time.Second),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
			Model:       getEnv("LLM_MODEL", "gemini-2.5-flash"),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			CacheTTL:    getEnvAsDuration("LLM_FACT_CACHE_TTL", time.Hour),
			CacheSize:   getEnvAsInt("LLM_FACT_CACHE_SIZE", 1024),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if !validSources[config.Tracker.Source] {
		return fmt.Errorf("unsupported POSITION_SOURCE %q", config.Tracker.Source)
	}
	if config.Tracker.PollInterval <= 0 {
		return fmt.Errorf("position poll interval must be positive")
	}
	if config.Tracker.TrailSize < 1 {
		return fmt.Errorf("trail size must be at least 1")
	}
	if (config.Tracker.TLELine1 == "") != (config.Tracker.TLELine2 == "") {
		return fmt.Errorf("both ISS_TLE_LINE1 and ISS_TLE_LINE2 must be set")
	}
	if config.Facts.RefreshInterval <= 0 || config.Facts.Cooldown < 0 || config.Facts.MinDisplay < 0 {
		return fmt.Errorf("fact refresh interval must be positive and cooldown/min display non-negative")
	}
	if config.Facts.MovementThreshold <= 0 {
		return fmt.Errorf("movement threshold must be positive")
	}
	if config.LLM.CacheSize < 0 {
		return fmt.Errorf("fact cache size must not be negative")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
