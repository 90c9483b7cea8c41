package config

import (
	"os"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string

	// LLM gateway upstreams
	GatewayAPIKey  string // key for the default (Gemini-compatible) gateway
	GatewayBaseURL string
	OpenAIAPIKey   string

	// Where the chat consumer reaches the gateway routes. Defaults to the
	// server's own address so the in-process gateway handlers serve it.
	SelfBaseURL string

	// Object storage
	StorageRoot   string
	StorageSecret string

	LogLevel string
	LogFile  string

	ListenAddr string
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "emploai"),
		DBPassword:     getEnv("DB_PASSWORD", "emploai"),
		DBName:         getEnv("DB_NAME", "emploai"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		SessionSecret:  getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		GatewayAPIKey:  getEnv("GATEWAY_API_KEY", ""),
		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		SelfBaseURL:    getEnv("SELF_BASE_URL", "http://localhost:8080"),
		StorageRoot:    getEnv("STORAGE_ROOT", "./data/storage"),
		StorageSecret:  getEnv("STORAGE_SECRET", "default-storage-secret-change-me"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
