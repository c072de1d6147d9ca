package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Artifacts; empty paths use the embedded defaults
	ModelPath    string
	EncodersPath string
	CatalogPath  string

	// Validation
	StrictNumericValidation bool

	// Prediction cache (Redis)
	PredictionCacheEnabled bool
	PredictionCacheTTL     time.Duration
	PredictionCachePrefix  string
	RedisHost              string
	RedisPort              string
	RedisPassword          string
	RedisDB                int

	// Assessment events (Kafka)
	KafkaBrokers []string
	KafkaTopic   string

	// Model release registry (PostgreSQL)
	ReleaseRegistryEnabled bool
	PostgresHost           string
	PostgresPort           string
	PostgresUser           string
	PostgresPassword       string
	PostgresDB             string
	PostgresSSLMode        string
}

// Load reads an optional .env file and then the environment. The returned
// Config is not modified afterwards.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 15*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 64*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		ModelPath:    getEnv("MODEL_PATH", ""),
		EncodersPath: getEnv("ENCODERS_PATH", ""),
		CatalogPath:  getEnv("CATALOG_PATH", ""),

		StrictNumericValidation: getBoolEnv("STRICT_NUMERIC_VALIDATION", false),

		PredictionCacheEnabled: getBoolEnv("PREDICTION_CACHE_ENABLED", false),
		PredictionCacheTTL:     getDuration("PREDICTION_CACHE_TTL", 10*time.Minute),
		PredictionCachePrefix:  getEnv("PREDICTION_CACHE_PREFIX", "obesity:prediction"),
		RedisHost:              getEnv("REDIS_HOST", "localhost"),
		RedisPort:              getEnv("REDIS_PORT", "6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "obesity-assessments"),

		ReleaseRegistryEnabled: getBoolEnv("RELEASE_REGISTRY_ENABLED", false),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "obesity"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:             getEnv("POSTGRES_DB", "obesity_check"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
