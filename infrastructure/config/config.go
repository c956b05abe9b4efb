package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Vector store configuration
	WeaviateHost   string `yaml:"weaviate_host"`
	WeaviateScheme string `yaml:"weaviate_scheme"`

	// Engine tuning
	CacheMaxSize    int           `yaml:"cache_max_size"`
	CacheDefaultTTL time.Duration `yaml:"cache_default_ttl"`
	EvaporationRate float64       `yaml:"evaporation_rate"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Rate limiting
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Logging and features
	LogLevel   string `yaml:"log_level"`
	EnableCORS bool   `yaml:"enable_cors"`

	// Maintenance
	DataPath          string        `yaml:"data_path"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	HealthLogInterval time.Duration `yaml:"health_log_interval"`
}

// LoadConfig loads configuration from environment variables, with an
// optional YAML overlay pointed at by CONFIG_FILE.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		WeaviateHost:   getEnv("WEAVIATE_HOST", "localhost:8081"),
		WeaviateScheme: getEnv("WEAVIATE_SCHEME", "http"),

		CacheMaxSize:    getEnvInt("CACHE_MAX_SIZE", 1000),
		CacheDefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", time.Hour),
		EvaporationRate: getEnvFloat("EVAPORATION_RATE", 0.01),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "memgate"),

		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 300),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),

		DataPath:          getEnv("DATA_PATH", ""),
		CleanupInterval:   getEnvDuration("CLEANUP_INTERVAL", 5*time.Minute),
		HealthLogInterval: getEnvDuration("HEALTH_LOG_INTERVAL", time.Minute),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

// applyFile overlays values from a YAML file on top of the
// environment-derived configuration.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present and clamps
// out-of-range tuning values back to their defaults.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.WeaviateHost == "" {
			return fmt.Errorf("WEAVIATE_HOST is required")
		}
	}
	if c.CacheMaxSize <= 0 {
		return fmt.Errorf("CACHE_MAX_SIZE must be positive, got %d", c.CacheMaxSize)
	}
	if c.EvaporationRate < 0 {
		return fmt.Errorf("EVAPORATION_RATE must not be negative, got %g", c.EvaporationRate)
	}

	// Non-positive rates and intervals would break the limiter and the
	// maintenance tickers, so they fall back to defaults instead.
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 300
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	if c.HealthLogInterval <= 0 {
		c.HealthLogInterval = time.Minute
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
