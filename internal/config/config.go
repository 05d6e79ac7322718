// Package config resolves runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Default worker counts. Image generation is the heavier call, so it gets a
// lower cap than descriptions.
const (
	DefaultDescribeWorkers = 5
	DefaultImageWorkers    = 3
)

// Default per-call timeouts.
const (
	DefaultDescribeTimeout = 90 * time.Second
	DefaultImageTimeout    = 120 * time.Second
)

// Config carries all runtime settings.
type Config struct {
	// GeminiAPIKey authenticates every model call. Required.
	GeminiAPIKey string

	// Model is the text model for analysis and slide design. Empty means the
	// chat package's environment-resolved default.
	Model string
	// ImageModel is the image-output model. Empty means the default.
	ImageModel string

	// DescribeWorkers caps concurrent describe calls.
	DescribeWorkers int
	// ImageWorkers caps concurrent image generation calls.
	ImageWorkers int

	// DescribeTimeout and ImageTimeout bound one model call each.
	DescribeTimeout time.Duration
	ImageTimeout    time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	cfg := &Config{
		GeminiAPIKey:    apiKey,
		Model:           os.Getenv("GEMINI_MODEL"),
		ImageModel:      os.Getenv("GEMINI_IMAGE_MODEL"),
		DescribeWorkers: intEnv("SLIDEDECK_DESCRIBE_WORKERS", DefaultDescribeWorkers),
		ImageWorkers:    intEnv("SLIDEDECK_IMAGE_WORKERS", DefaultImageWorkers),
		DescribeTimeout: secondsEnv("SLIDEDECK_DESCRIBE_TIMEOUT", DefaultDescribeTimeout),
		ImageTimeout:    secondsEnv("SLIDEDECK_IMAGE_TIMEOUT", DefaultImageTimeout),
	}

	if cfg.DescribeWorkers < 1 || cfg.ImageWorkers < 1 {
		return nil, fmt.Errorf("worker counts must be positive (describe=%d, image=%d)",
			cfg.DescribeWorkers, cfg.ImageWorkers)
	}

	return cfg, nil
}

// intEnv reads an integer environment variable, falling back to def when the
// variable is unset or malformed.
func intEnv(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("var", name).Str("value", raw).Msg("Ignoring non-integer environment variable")
		return def
	}
	return n
}

// secondsEnv reads a seconds-valued environment variable as a duration.
func secondsEnv(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn().Str("var", name).Str("value", raw).Msg("Ignoring invalid timeout environment variable")
		return def
	}
	return time.Duration(n) * time.Second
}
