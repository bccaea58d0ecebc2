package config

import (
	"os"
	"runtime"
	"strconv"

	"goari/internal"
	"goari/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Inference InferenceConfig
	Server    ServerConfig
	LogLevel  internal.LogLevel
}

// InferenceConfig holds the defaults applied to inference requests that do
// not set them explicitly
type InferenceConfig struct {
	Alpha        float64
	Permutations int
	Seed         *int64
	Workers      int
	GridPoints   int
	ChunkSize    int // permutation realizations per RNG stream
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	inference, err := loadInferenceConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inference configuration")
	}

	config := &Config{
		Inference: *inference,
		Server:    *loadServerConfig(),
		LogLevel:  internal.ParseLogLevel(os.Getenv("LOG_LEVEL")),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Inference: InferenceConfig{
			Alpha:        0.05,
			Permutations: 10000,
			Workers:      runtime.GOMAXPROCS(0),
			GridPoints:   1000,
			ChunkSize:    64,
		},
		Server:   ServerConfig{Port: "8080", GinMode: "release"},
		LogLevel: internal.LogLevelInfo,
	}
}

func loadInferenceConfig() (*InferenceConfig, error) {
	defaults := Default().Inference
	cfg := &InferenceConfig{
		Alpha:        getEnvFloatOrDefault("ARI_ALPHA", defaults.Alpha),
		Permutations: getEnvIntOrDefault("ARI_PERMUTATIONS", defaults.Permutations),
		Workers:      getEnvIntOrDefault("ARI_WORKERS", defaults.Workers),
		GridPoints:   getEnvIntOrDefault("ARI_GRID_POINTS", defaults.GridPoints),
		ChunkSize:    getEnvIntOrDefault("ARI_CHUNK_SIZE", defaults.ChunkSize),
	}
	if value := os.Getenv("ARI_SEED"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("ARI_SEED must be an integer")
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func validateConfig(config *Config) error {
	inf := config.Inference
	if !(inf.Alpha > 0 && inf.Alpha < 1) {
		return errors.ConfigInvalid("ARI_ALPHA must lie strictly between 0 and 1")
	}
	if inf.Permutations < 1 {
		return errors.ConfigInvalid("ARI_PERMUTATIONS must be positive")
	}
	if inf.Workers < 1 {
		return errors.ConfigInvalid("ARI_WORKERS must be positive")
	}
	if inf.GridPoints < 2 {
		return errors.ConfigInvalid("ARI_GRID_POINTS must be at least 2")
	}
	if inf.ChunkSize < 1 {
		return errors.ConfigInvalid("ARI_CHUNK_SIZE must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
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
