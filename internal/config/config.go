package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Gemini   GeminiConfig
	Quota    QuotaConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
	KeyTTL   time.Duration
}

// AdminConfig holds the static bearer token protecting the admin surface
type AdminConfig struct {
	Token string
}

// GeminiConfig holds the upstream model credentials. APIKeys preserves the
// configured slot order; empty slots are kept so the pool walk can skip
// them explicitly.
type GeminiConfig struct {
	APIKeys     []string
	Model       string
	MaxAttempts int
	BaseDelay   time.Duration
}

// QuotaConfig holds request-quota defaults and audit retention
type QuotaConfig struct {
	DefaultPerDay     int
	UsageLogRetention time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "plantsaathi"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			KeyTTL:   getEnvAsDuration("REDIS_KEY_TTL", 5*time.Minute),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_API_TOKEN", ""),
		},
		Gemini: GeminiConfig{
			APIKeys:     geminiKeySlots(),
			Model:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			MaxAttempts: getEnvAsInt("GEMINI_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvAsDuration("GEMINI_RETRY_BASE_DELAY", time.Second),
		},
		Quota: QuotaConfig{
			DefaultPerDay:     getEnvAsInt("DEFAULT_QUOTA_PER_DAY", 50),
			UsageLogRetention: getEnvAsDuration("USAGE_LOG_RETENTION", 90*24*time.Hour),
		},
	}
}

// geminiKeySlots reads the credential pool. GEMINI_API_KEYS takes a comma
// separated list; the numbered GEMINI_API_KEY_1..5 variables are the
// fallback layout. Slot order is preserved, empties included.
func geminiKeySlots() []string {
	if list := os.Getenv("GEMINI_API_KEYS"); list != "" {
		keys := strings.Split(list, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		return keys
	}

	keys := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		keys = append(keys, os.Getenv("GEMINI_API_KEY_"+strconv.Itoa(i)))
	}
	return keys
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
