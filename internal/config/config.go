package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Server     ServerConfig
	Engine     EngineConfig
	Logging    LoggingConfig
	LLM        LLMConfig
	Geocode    GeocodeConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes priority
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds the conversation context store configuration.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	ContextTTLMins int
	Enabled        bool
}

// NATSConfig holds the analytics event publisher configuration.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Enabled       bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// EngineConfig holds the query engine tunables. The retention thresholds
// control the filter-or-sort discipline per criterion; they are tunable
// configuration, not derived constants.
type EngineConfig struct {
	RetainSuperhost    float64
	RetainRating       float64
	RetainPrice        float64
	RetainPropertyType float64
	RetainAmenity      float64
	RetainBedrooms     float64
	RetainReviews      float64
	AmenityPopularity  float64
	DefaultNights      int
	ClarifyThreshold   float64
	GoodCompleteness   float64
	MaxRefinements     int
	CandidateLimit     int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LLMConfig holds the optional enhancement service configuration.
type LLMConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatTopP            float64
	ChatMaxTokens       int
	EmbeddingModel      string
	EmbeddingDimensions int
	Timeout             int
	Enabled             bool
}

// GeocodeConfig holds the optional location validation service.
type GeocodeConfig struct {
	BaseURL string
	Timeout int
	Enabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "stayfinder"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			ContextTTLMins: getEnvAsInt("CONTEXT_TTL_MINUTES", 120),
			Enabled:        getEnv("REDIS_ADDR", "") != "",
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "stayfinder.events"),
			Enabled:       getEnv("NATS_URL", "") != "",
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Engine: EngineConfig{
			RetainSuperhost:    getEnvAsFloat("RETAIN_SUPERHOST", 0.0),
			RetainRating:       getEnvAsFloat("RETAIN_RATING", 0.30),
			RetainPrice:        getEnvAsFloat("RETAIN_PRICE", 0.10),
			RetainPropertyType: getEnvAsFloat("RETAIN_PROPERTY_TYPE", 0.20),
			RetainAmenity:      getEnvAsFloat("RETAIN_AMENITY", 0.40),
			RetainBedrooms:     getEnvAsFloat("RETAIN_BEDROOMS", 0.25),
			RetainReviews:      getEnvAsFloat("RETAIN_REVIEWS", 0.30),
			AmenityPopularity:  getEnvAsFloat("AMENITY_POPULARITY", 0.40),
			DefaultNights:      getEnvAsInt("DEFAULT_NIGHTS", 3),
			ClarifyThreshold:   getEnvAsFloat("COMPLETENESS_CLARIFY", 0.25),
			GoodCompleteness:   getEnvAsFloat("COMPLETENESS_GOOD", 0.75),
			MaxRefinements:     getEnvAsInt("MAX_REFINEMENTS", 6),
			CandidateLimit:     getEnvAsInt("CANDIDATE_LIMIT", 50),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		LLM: LLMConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.4),
			ChatTopP:            getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.9),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
		Geocode: GeocodeConfig{
			BaseURL: getEnv("GEOCODE_BASE_URL", ""),
			Timeout: getEnvAsInt("GEOCODE_TIMEOUT", 5),
			Enabled: getEnv("GEOCODE_BASE_URL", "") != "",
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
