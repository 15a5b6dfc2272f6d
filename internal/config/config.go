package config

import (
	"os"
	"strconv"
)

type Config struct {
	BackendBaseURL string
	MongoURI       string
	RedisAddr      string
	HTTPPort       string
	MaxConcurrent  int
}

func Load() *Config {
	return &Config{
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:3001"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		MaxConcurrent:  getEnvInt("MAX_CONCURRENT_FETCHES", 8),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
