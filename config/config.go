package config

import (
	"fmt"
	"os"
	"time"

	"corebank/models"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP API configuration
	APIAddr    string
	AdminToken string

	// Interest accrual configuration
	DayCount          models.DayCountConvention
	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	// Audit configuration; empty disables the NATS sink
	NATSURL string

	// Environment is "development", "production" or "test"
	Environment string
}

// Load loads configuration from a .env file if present, then the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIAddr:           ":8080",
		AdminToken:        os.Getenv("ADMIN_TOKEN"),
		DayCount:          models.DayCountActual365,
		SchedulerEnabled:  true,
		SchedulerInterval: time.Hour,
		NATSURL:           os.Getenv("NATS_URL"),
		Environment:       os.Getenv("ENVIRONMENT"),
	}

	if addr := os.Getenv("API_ADDR"); addr != "" {
		config.APIAddr = addr
	}
	if dayCount := os.Getenv("DAY_COUNT_CONVENTION"); dayCount != "" {
		parsed, err := models.ParseDayCount(dayCount)
		if err != nil {
			return nil, fmt.Errorf("invalid DAY_COUNT_CONVENTION: %w", err)
		}
		config.DayCount = parsed
	}
	if enabled := os.Getenv("SCHEDULER_ENABLED"); enabled != "" {
		config.SchedulerEnabled = enabled == "true"
	}
	if interval := os.Getenv("SCHEDULER_INTERVAL"); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL: %w", err)
		}
		config.SchedulerInterval = parsed
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
