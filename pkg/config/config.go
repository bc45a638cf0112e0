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
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	SMTP       SMTPConfig
	Classifier ClassifierConfig
	Risk       RiskConfig
	Map        MapConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	BaseURL      string // used to build password reset links
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
	ResetTTL   int // password reset token lifetime in hours
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Enabled   bool
}

// ClassifierConfig holds the risk model artifact settings
type ClassifierConfig struct {
	ArtifactPath string
}

// RiskConfig holds the rule-based fallback tuning
type RiskConfig struct {
	MinZone          int
	MaxZone          int
	HighThreshold    float64 // daily density at or above which risk is ALTO
	MediumThreshold  float64 // daily density at or above which risk is MEDIO
	DefaultWindowDay int     // window used when history has no date spread
	TopTypesLimit    int
}

// MapConfig holds heat-map serving settings
type MapConfig struct {
	FiltersCacheTTL time.Duration
	ZonesCacheTTL   time.Duration
	MaxPoints       int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			BaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "safedata"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
			ResetTTL:   getEnvAsInt("RESET_TOKEN_TTL_HOURS", 24),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", "localhost"),
			Port:      getEnv("SMTP_PORT", "587"),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			FromEmail: getEnv("SMTP_FROM_EMAIL", "no-reply@safedata.local"),
			FromName:  getEnv("SMTP_FROM_NAME", "SafeData Intelligence"),
			Enabled:   getEnvAsBool("SMTP_ENABLED", false),
		},
		Classifier: ClassifierConfig{
			ArtifactPath: getEnv("CLASSIFIER_ARTIFACT_PATH", "models/risk_classifier.json"),
		},
		Risk: RiskConfig{
			MinZone:          getEnvAsInt("RISK_MIN_ZONE", 1),
			MaxZone:          getEnvAsInt("RISK_MAX_ZONE", 7),
			HighThreshold:    getEnvAsFloat("RISK_HIGH_THRESHOLD", 5.0),
			MediumThreshold:  getEnvAsFloat("RISK_MEDIUM_THRESHOLD", 2.0),
			DefaultWindowDay: getEnvAsInt("RISK_DEFAULT_WINDOW_DAYS", 1),
			TopTypesLimit:    getEnvAsInt("RISK_TOP_TYPES_LIMIT", 5),
		},
		Map: MapConfig{
			FiltersCacheTTL: time.Duration(getEnvAsInt("MAP_FILTERS_CACHE_TTL", 300)) * time.Second,
			ZonesCacheTTL:   time.Duration(getEnvAsInt("MAP_ZONES_CACHE_TTL", 3600)) * time.Second,
			MaxPoints:       getEnvAsInt("MAP_MAX_POINTS", 20000),
		},
	}

	if cfg.Risk.MaxZone < cfg.Risk.MinZone {
		return nil, fmt.Errorf("invalid zone range: RISK_MAX_ZONE %d < RISK_MIN_ZONE %d", cfg.Risk.MaxZone, cfg.Risk.MinZone)
	}
	if cfg.Risk.MediumThreshold > cfg.Risk.HighThreshold {
		return nil, fmt.Errorf("invalid risk thresholds: medium %.2f > high %.2f", cfg.Risk.MediumThreshold, cfg.Risk.HighThreshold)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the PostgreSQL connection URL (used by the migration runner)
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Addr returns the SMTP server address
func (c *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
