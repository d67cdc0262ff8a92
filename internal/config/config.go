package config

import (
	"os"
	"strconv"
	"strings"

	"biasdetect/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	LogLevel string
}

// DatabaseConfig holds the optional audit history store settings
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a history store is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Driver picks the SQL driver from the URL scheme
func (d DatabaseConfig) Driver() string {
	if strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// DSN returns the data source name for the selected driver
func (d DatabaseConfig) DSN() string {
	if d.Driver() == "sqlite" {
		return strings.TrimPrefix(d.URL, "sqlite://")
	}
	return d.URL
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int
}

// AnalysisConfig holds the fairness analysis defaults
type AnalysisConfig struct {
	Bins                int
	MissingThreshold    float64
	DisparateImpactRule float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:   *loadServerConfig(),
		Analysis: *loadAnalysisConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 200),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Bins:                getEnvIntOrDefault("BIAS_BINS", 5),
		MissingThreshold:    getEnvFloatOrDefault("BIAS_MISSING_THRESHOLD", 0.10),
		DisparateImpactRule: getEnvFloatOrDefault("BIAS_DI_THRESHOLD", 0.8),
	}
}

func validateConfig(config *Config) error {
	if config.Analysis.Bins < 1 {
		return errors.ConfigInvalid("BIAS_BINS must be at least 1")
	}
	if config.Analysis.MissingThreshold < 0 || config.Analysis.MissingThreshold > 1 {
		return errors.ConfigInvalid("BIAS_MISSING_THRESHOLD must be within [0, 1]")
	}
	if config.Analysis.DisparateImpactRule <= 0 || config.Analysis.DisparateImpactRule > 1 {
		return errors.ConfigInvalid("BIAS_DI_THRESHOLD must be within (0, 1]")
	}
	if config.Server.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
