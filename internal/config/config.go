package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	JWTSecret      string // stub server only
	StubPort       string // stub server only
}

func Load() *Config {
	// .env is optional; real environment always wins
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000/api"),
		RequestTimeout: getSeconds("REQUEST_TIMEOUT_SECONDS", 10),
		PollInterval:   getSeconds("POLL_INTERVAL_SECONDS", 8),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		StubPort:       getEnv("STUB_PORT", "8000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}
