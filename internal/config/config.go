// Package config loads the recognized options of spec.md §6 from the
// environment (optionally via a .env file), following the teacher's
// getEnv-with-default convention.
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

// envPrefix is the common prefix documented in spec.md §6 for
// environment-variable overrides of store connection parameters.
const envPrefix = "ARCANA_"

// Config holds every recognized option. Zero value is never valid standalone
// — use Load.
type Config struct {
	DBHost     string `validate:"required"`
	DBPort     int    `validate:"gt=0,lte=65535"`
	DBName     string `validate:"required"`
	DBUser     string `validate:"required"`
	DBPassword string

	RateMinDelay    time.Duration `validate:"gte=0"`
	IngestWindow    time.Duration `validate:"gt=0"`
	IngestBatchSize int           `validate:"gt=0"`
	DaemonInterval  time.Duration `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=debug info warning warn error"`
}

// Load reads configuration from the process environment, first loading a
// .env file if present (silently ignored if absent — this mirrors
// production deployment where env vars are injected directly).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     getEnv(envPrefix+"DB_HOST", "localhost"),
		DBName:     getEnv(envPrefix+"DB_NAME", "arcana"),
		DBUser:     getEnv(envPrefix+"DB_USER", "arcana"),
		DBPassword: os.Getenv(envPrefix + "DB_PASSWORD"),
		LogLevel:   strings.ToLower(getEnv(envPrefix+"LOG_LEVEL", "info")),
	}

	port, err := getEnvInt(envPrefix+"DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	cfg.DBPort = port

	minDelay, err := getEnvFloatSeconds(envPrefix+"RATE_MIN_DELAY_SECONDS", 0.12)
	if err != nil {
		return nil, err
	}
	cfg.RateMinDelay = minDelay

	window, err := getEnvFloatSeconds(envPrefix+"INGEST_WINDOW_SECONDS", 900)
	if err != nil {
		return nil, err
	}
	cfg.IngestWindow = window

	batchSize, err := getEnvInt(envPrefix+"INGEST_BATCH_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	cfg.IngestBatchSize = batchSize

	interval, err := getEnvFloatSeconds(envPrefix+"DAEMON_INTERVAL_SECONDS", 900)
	if err != nil {
		return nil, err
	}
	cfg.DaemonInterval = interval

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloatSeconds(key string, defSeconds float64) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(defSeconds * float64(time.Second)), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return time.Duration(f * float64(time.Second)), nil
}
