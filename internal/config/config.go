// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string
	S3Bucket  string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// SES
	SESSenderEmail string

	// Engine
	LenderRegistryPath string
	StrongThreshold    int
	ModerateThreshold  int
	MinFitImprovement  int
	ValueTolerance     float64
	SwapDigestSize     int

	// Application
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// .env is optional, only used for local runs
	_ = godotenv.Load()

	cfg := &Config{
		AWSRegion: getEnv("AWS_REGION", "eu-west-2"),
		S3Bucket:  getEnv("S3_BUCKET", "sme-loan-exchange-dev"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "sme_loan_exchange"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),

		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),

		LenderRegistryPath: getEnv("LENDER_REGISTRY_PATH", ""),
		StrongThreshold:    getEnvInt("FIT_STRONG_THRESHOLD", 30),
		ModerateThreshold:  getEnvInt("FIT_MODERATE_THRESHOLD", 15),
		MinFitImprovement:  getEnvInt("SWAP_MIN_FIT_IMPROVEMENT", 15),
		ValueTolerance:     getEnvFloat("SWAP_VALUE_TOLERANCE", 0.20),
		SwapDigestSize:     getEnvInt("SWAP_DIGEST_SIZE", 5),

		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the engine settings.
func (c *Config) Validate() error {
	if c.ModerateThreshold <= 0 || c.StrongThreshold < c.ModerateThreshold {
		return fmt.Errorf("invalid fit thresholds: strong %d, moderate %d", c.StrongThreshold, c.ModerateThreshold)
	}
	if c.MinFitImprovement < 0 {
		return fmt.Errorf("invalid swap min fit improvement: %d", c.MinFitImprovement)
	}
	if c.ValueTolerance < 0 {
		return fmt.Errorf("invalid swap value tolerance: %v", c.ValueTolerance)
	}
	return nil
}

// DatabaseConfigured reports whether a database password or non-local host is set.
func (c *Config) DatabaseConfigured() bool {
	return c.DBPassword != "" || !isLocalHost(c.DBHost)
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require"
	if isLocalHost(c.DBHost) {
		sslMode = "disable"
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as float64 or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
