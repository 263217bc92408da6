package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Chat     ChatConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	Secure         bool   // HTTPS-only session cookies
	Environment    string // "development", "production", "test"
	AllowedOrigin  string // frontend origin for CORS
	MigrationsPath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ChatConfig holds credentials for the hosted chat provider.
// Provider "console" logs provisioning calls instead of making them.
type ChatConfig struct {
	Provider  string // "stream", "console"
	APIKey    string
	APISecret string
	BaseURL   string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvInt("SERVER_PORT", 8080),
			Secure:         getEnvBool("SERVER_SECURE", false),
			Environment:    getEnv("APP_ENV", "development"),
			AllowedOrigin:  getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "gatherly"),
			Password: getEnv("DB_PASSWORD", "gatherly"),
			DBName:   getEnv("DB_NAME", "gatherly"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Chat: ChatConfig{
			Provider:  getEnv("CHAT_PROVIDER", "console"),
			APIKey:    getEnv("CHAT_API_KEY", ""),
			APISecret: getEnv("CHAT_API_SECRET", ""),
			BaseURL:   getEnv("CHAT_BASE_URL", "https://chat.stream-io-api.com"),
		},
	}

	if cfg.Chat.Provider == "stream" && (cfg.Chat.APIKey == "" || cfg.Chat.APISecret == "") {
		return nil, fmt.Errorf("chat provider %q requires CHAT_API_KEY and CHAT_API_SECRET", cfg.Chat.Provider)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
