package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Data pipeline
	Data DataConfig

	// API
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DataConfig holds the fixed filesystem paths of the pipeline artifacts.
// The cache and the store are full-rebuild artifacts, never merged into.
type DataConfig struct {
	SourcePath string // raw Excel workbook
	SheetName  string // sheet to read, empty = first sheet
	CachePath  string // canonical CSV cache
	StorePath  string // SQLite backing store
	ImagesDir  string // exported dashboard images served by the API

	// RefreshSchedule is a cron expression (with seconds) for the staleness
	// re-check job. Empty disables the job.
	RefreshSchedule string

	// CompareModTime enables cache invalidation when the source file is
	// newer than the cache. Off by default: a stale cache wins, which is
	// the documented behavior of the original pipeline.
	CompareModTime bool
}

// APIConfig holds HTTP API configuration
type APIConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Data pipeline
		Data: DataConfig{
			SourcePath:      getEnv("RIDES_SOURCE_PATH", "OLA_DataSet.xlsx"),
			SheetName:       getEnv("RIDES_SHEET_NAME", ""),
			CachePath:       getEnv("RIDES_CACHE_PATH", "Cleaned_OLA_Data.csv"),
			StorePath:       getEnv("RIDES_STORE_PATH", "ola.db"),
			ImagesDir:       getEnv("RIDES_IMAGES_DIR", "powerbi_images"),
			RefreshSchedule: getEnv("RIDES_REFRESH_SCHEDULE", ""),
			CompareModTime:  getEnvAsBool("RIDES_COMPARE_MTIME", false),
		},

		// API
		API: APIConfig{
			RateLimitPerSec: getEnvAsFloat("API_RATE_LIMIT_PER_SEC", 20),
			RateLimitBurst:  getEnvAsInt("API_RATE_LIMIT_BURST", 40),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Data.CachePath == "" && c.Data.SourcePath == "" {
		return fmt.Errorf("at least one of RIDES_CACHE_PATH and RIDES_SOURCE_PATH is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
