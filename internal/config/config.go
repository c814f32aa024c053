package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Static data sources
const (
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Live position feed formats
const (
	FormatJSON   = "json"
	FormatGTFSRT = "gtfsrt"
)

// Config holds all configuration for the metro-map server
type Config struct {
	// HTTP server
	Port           string   `validate:"required,numeric"`
	AllowedOrigins []string `validate:"dive,required"`
	StaticDir      string

	// WMATA upstream
	WMATAHost      string `validate:"required,url"`
	WMATAAPIKey    string
	WMATATimeout   time.Duration `validate:"gt=0"`
	WMATARateLimit float64       `validate:"gte=0"`
	WMATARateBurst int           `validate:"gte=0"`

	// Live positions
	PollInterval       time.Duration `validate:"gt=0"`
	PositionsFormat    string        `validate:"oneof=json gtfsrt"`
	GTFSRTPositionsURL string        `validate:"required_if=PositionsFormat gtfsrt,omitempty,url"`

	// Static data
	StaticSource   string `validate:"oneof=file sqlite postgres"`
	StaticDataDir  string `validate:"required_if=StaticSource file"`
	SQLiteDatabase string `validate:"required_if=StaticSource sqlite"`
	DatabaseURL    string `validate:"required_if=StaticSource postgres"`

	// Arrivals
	ArrivalsTTL time.Duration `validate:"gt=0"`
}

// LoadEnvFiles loads a base .env file and then an override file. Missing
// files are ignored.
func LoadEnvFiles(base, override string) {
	_ = godotenv.Load(base)
	_ = godotenv.Overload(override)
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// HTTP server
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),
		StaticDir:      getEnv("STATIC_DIR", ""),

		// WMATA upstream
		WMATAHost:      getEnv("WMATA_HOST", "https://api.wmata.com"),
		WMATAAPIKey:    getEnv("WMATA_API_KEY", ""),
		WMATATimeout:   time.Duration(getEnvInt("WMATA_TIMEOUT_SECONDS", 15)) * time.Second,
		WMATARateLimit: getEnvFloat("WMATA_RATE_LIMIT", 10),
		WMATARateBurst: getEnvInt("WMATA_RATE_BURST", 5),

		// Live positions
		PollInterval:       time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 8)) * time.Second,
		PositionsFormat:    getEnv("POSITIONS_FORMAT", FormatJSON),
		GTFSRTPositionsURL: getEnv("GTFSRT_POSITIONS_URL", ""),

		// Static data
		StaticSource:   getEnv("STATIC_SOURCE", SourceFile),
		StaticDataDir:  getEnv("STATIC_DATA_DIR", "data"),
		SQLiteDatabase: getEnv("SQLITE_DATABASE", "data/metro.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		// Arrivals
		ArrivalsTTL: time.Duration(getEnvInt("ARRIVALS_TTL_SECONDS", 10)) * time.Second,
	}
}

// Validate checks the configuration for missing or inconsistent values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
