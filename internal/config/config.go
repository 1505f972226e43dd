package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	BackendBaseURL string
	BackendTimeout time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	LocalIssuerSecret string

	RedisAddr     string
	RedisPassword string

	SessionTTL time.Duration
}

func Load() Config {

	cfg := Config{

		AppPort: getenv("APP_PORT", "8080"),

		BackendBaseURL: getenv("BACKEND_BASE_URL", "http://localhost:5000"),
		BackendTimeout: duration("BACKEND_TIMEOUT_MS", 10*time.Second),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		LocalIssuerSecret: os.Getenv("LOCAL_ISSUER_SECRET"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SessionTTL: duration("SESSION_TTL_MS", 24*time.Hour),
	}

	return cfg

}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
