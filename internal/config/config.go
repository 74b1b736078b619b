package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port            string
	DBConn          string
	LogLevel        string
	AllowOrigins    string
	AnthropicAPIKey string
	LLMModel        string
	LLMTimeout      time.Duration
	LLMSampleLimit  int
}

// NewConfig loads configuration from environment variables
func NewConfig() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5432 user=audit password=audit dbname=fec_audit sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AllowOrigins:    getEnv("ALLOW_ORIGINS", "http://localhost:3000"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", "claude-sonnet-4-5-20250929"),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 45*time.Second),
		LLMSampleLimit:  getEnvInt("LLM_SAMPLE_LIMIT", 40),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
