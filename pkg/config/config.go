// Package config loads the server configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config defines the structure for storing application configuration
type Config struct {
	// Logging
	LogLevel logrus.Level

	// HTTP server configuration
	HTTPPort          int
	HTTPEnableMetrics bool
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration

	// Webhook configuration
	WebhookSecret string
	// WebhookMaxAge is the acceptance window for signed payloads;
	// older timestamps are rejected.
	WebhookMaxAge time.Duration

	// Result store configuration
	ResultStoreCapacity int

	// Analysis thresholds. These cutoffs have no established clinical
	// calibration, so they are configurable rather than hard-coded.
	WordFindingFillerThreshold  int
	FrequentCorrectionThreshold int

	// AMQP configuration; publishing is disabled when the URL is empty
	AMQPUrl       string
	AMQPQueueName string
}

// Load loads the application configuration from environment variables
func Load(logger *logrus.Logger) (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.WithError(err).Debug("No .env file loaded, using process environment")
	}

	config := &Config{}

	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", levelStr, err)
	}
	config.LogLevel = level

	config.HTTPPort = getEnvInt(logger, "HTTP_PORT", 8000)
	config.HTTPEnableMetrics = getEnvBool(logger, "HTTP_ENABLE_METRICS", true)
	config.HTTPReadTimeout = getEnvDuration(logger, "HTTP_READ_TIMEOUT", 10*time.Second)
	config.HTTPWriteTimeout = getEnvDuration(logger, "HTTP_WRITE_TIMEOUT", 30*time.Second)

	config.WebhookSecret = os.Getenv("WEBHOOK_SECRET")
	if config.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET is required")
	}
	config.WebhookMaxAge = getEnvDuration(logger, "WEBHOOK_MAX_AGE", 30*time.Minute)

	config.ResultStoreCapacity = getEnvInt(logger, "RESULT_STORE_CAPACITY", 10)

	config.WordFindingFillerThreshold = getEnvInt(logger, "CHALLENGE_FILLER_THRESHOLD", 2)
	config.FrequentCorrectionThreshold = getEnvInt(logger, "CHALLENGE_CORRECTION_THRESHOLD", 1)

	config.AMQPUrl = os.Getenv("AMQP_URL")
	config.AMQPQueueName = os.Getenv("AMQP_QUEUE_NAME")
	if config.AMQPUrl != "" && config.AMQPQueueName == "" {
		config.AMQPQueueName = "speechwell_results"
		logger.Info("No AMQP_QUEUE_NAME specified, defaulting to speechwell_results")
	}

	return config, nil
}

// getEnvInt reads an integer environment variable, logging and falling
// back to the default on absence or parse failure.
func getEnvInt(logger *logrus.Logger, key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"key":     key,
			"value":   raw,
			"default": def,
		}).Warn("Invalid integer environment variable, using default")
		return def
	}
	return value
}

// getEnvBool reads a boolean environment variable ("true"/"false").
func getEnvBool(logger *logrus.Logger, key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"key":     key,
			"value":   raw,
			"default": def,
		}).Warn("Invalid boolean environment variable, using default")
		return def
	}
	return value
}

// getEnvDuration reads a duration environment variable. Plain integers
// are treated as seconds for compatibility with older deployments.
func getEnvDuration(logger *logrus.Logger, key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"key":     key,
			"value":   raw,
			"default": def,
		}).Warn("Invalid duration environment variable, using default")
		return def
	}
	return value
}
