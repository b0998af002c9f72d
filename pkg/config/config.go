package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Gemini    GeminiConfig
	Embedding EmbeddingConfig
	Pipeline  PipelineConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// GeminiConfig holds Gemini generation backend configuration
type GeminiConfig struct {
	Enabled        bool
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// EmbeddingConfig holds query/index embedding configuration
type EmbeddingConfig struct {
	Dimension int
}

// PipelineConfig holds query pipeline tuning knobs
type PipelineConfig struct {
	RequestTimeout   time.Duration
	RetrieverTimeout time.Duration
	LLMTimeout       time.Duration
	TopK             int
	ContextBudget    int
	MaxSources       int
	FallbackPenalty  float64
	ConfidenceFloor  float64
	EntityDictPath   string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8001),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "ingres_rag"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Gemini: GeminiConfig{
			Enabled:        getEnvAsBool("GEMINI_ENABLED", true),
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			RateLimitRPM:   getEnvAsInt("GEMINI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("GEMINI_RATE_LIMIT_BURST", 5),
		},
		Embedding: EmbeddingConfig{
			Dimension: getEnvAsInt("VECTOR_DIMENSION", 384),
		},
		Pipeline: PipelineConfig{
			RequestTimeout:   getEnvAsDuration("PIPELINE_REQUEST_TIMEOUT", 30*time.Second),
			RetrieverTimeout: getEnvAsDuration("PIPELINE_RETRIEVER_TIMEOUT", 5*time.Second),
			LLMTimeout:       getEnvAsDuration("PIPELINE_LLM_TIMEOUT", 15*time.Second),
			TopK:             getEnvAsInt("TOP_K_RESULTS", 5),
			ContextBudget:    getEnvAsInt("CONTEXT_BUDGET_CHARS", 4000),
			MaxSources:       getEnvAsInt("MAX_SOURCES", 3),
			FallbackPenalty:  getEnvAsFloat("CONFIDENCE_FALLBACK_PENALTY", 0.6),
			ConfidenceFloor:  getEnvAsFloat("CONFIDENCE_FLOOR", 0.1),
			EntityDictPath:   getEnv("ENTITY_DICT_PATH", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "groundwater-rag"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration combinations that must fail before startup.
func (c *Config) Validate() error {
	if c.Gemini.Enabled && c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_ENABLED is true but GEMINI_API_KEY is not set")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Pipeline.LLMTimeout >= c.Pipeline.RequestTimeout {
		return fmt.Errorf("PIPELINE_LLM_TIMEOUT (%s) must be shorter than PIPELINE_REQUEST_TIMEOUT (%s)",
			c.Pipeline.LLMTimeout, c.Pipeline.RequestTimeout)
	}
	if c.Pipeline.FallbackPenalty <= 0 || c.Pipeline.FallbackPenalty > 1 {
		return fmt.Errorf("CONFIDENCE_FALLBACK_PENALTY must be in (0,1], got %f", c.Pipeline.FallbackPenalty)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
