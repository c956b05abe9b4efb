package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerAddress:     ":8080",
		Environment:       "development",
		WeaviateHost:      "localhost:8081",
		WeaviateScheme:    "http",
		CacheMaxSize:      1000,
		CacheDefaultTTL:   time.Hour,
		EvaporationRate:   0.01,
		RequestsPerMinute: 300,
		LogLevel:          "info",
		CleanupInterval:   5 * time.Minute,
		HealthLogInterval: time.Minute,
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	cfg.JWTSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_RejectsBadEngineTuning(t *testing.T) {
	cfg := validConfig()
	cfg.CacheMaxSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.EvaporationRate = -0.1
	assert.Error(t, cfg.Validate())
}

func TestValidate_ClampsRatesAndIntervals(t *testing.T) {
	cfg := validConfig()
	cfg.RequestsPerMinute = 0
	cfg.CleanupInterval = 0
	cfg.HealthLogInterval = -time.Second

	require.NoError(t, cfg.Validate())

	assert.Equal(t, 300, cfg.RequestsPerMinute)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, time.Minute, cfg.HealthLogInterval)
}
