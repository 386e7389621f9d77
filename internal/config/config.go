package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string
	DataDir string
	APIURL  string
	Auth    AuthConfig
	Log     LogConfig
	Seed    SeedConfig

	HTTPTimeout  time.Duration
	OTLPEndpoint string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LogConfig struct {
	File  string
	Level string
}

// SeedConfig describes the first-run administrator created on an empty database.
type SeedConfig struct {
	AdminUser     string
	AdminPassword string
	Organization  string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// Load reads an optional .env file and then the process environment.
// A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:    getEnv("MOTK_ADDR", ":8000"),
		DataDir: getEnv("MOTK_DATA_DIR", "data"),
		APIURL:  strings.TrimRight(getEnv("MOTK_API_URL", "http://127.0.0.1:8000/api"), "/"),
		Auth: AuthConfig{
			JWTSecret: getEnv("MOTK_JWT_SECRET", "change-me"),
			TokenTTL:  getDuration("MOTK_TOKEN_TTL", 30*time.Minute),
		},
		Log: LogConfig{
			File:  getEnv("MOTK_LOG_FILE", ""),
			Level: getEnv("MOTK_LOG_LEVEL", "info"),
		},
		Seed: SeedConfig{
			AdminUser:     getEnv("MOTK_ADMIN_USER", ""),
			AdminPassword: getEnv("MOTK_ADMIN_PASSWORD", ""),
			Organization:  getEnv("MOTK_ADMIN_ORG", "Studio"),
		},
		HTTPTimeout:  getDuration("MOTK_HTTP_TIMEOUT", 15*time.Second),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}
