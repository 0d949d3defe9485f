package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	TDX         TDXConfig
	Stations    StationsConfig
	Timezone    string
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// TDXConfig holds upstream TDX API configuration.
// ClientID/ClientSecret are optional; without them requests go out on the
// anonymous basic tier.
type TDXConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RateEvery    time.Duration
	RateBurst    int
}

// StationsConfig holds station directory cache configuration
type StationsConfig struct {
	TTL time.Duration
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		},
		TDX: TDXConfig{
			BaseURL:      getEnv("TDX_BASE_URL", "https://tdx.transportdata.tw/api"),
			TokenURL:     getEnv("TDX_TOKEN_URL", "https://tdx.transportdata.tw/auth/realms/TDXConnect/protocol/openid-connect/token"),
			ClientID:     getEnv("TDX_CLIENT_ID", ""),
			ClientSecret: getEnv("TDX_CLIENT_SECRET", ""),
			Timeout:      getEnvAsDuration("TDX_TIMEOUT", 30*time.Second),
			RateEvery:    getEnvAsDuration("TDX_RATE_EVERY", time.Second),
			RateBurst:    getEnvAsInt("TDX_RATE_BURST", 5),
		},
		Stations: StationsConfig{
			TTL: getEnvAsDuration("STATIONS_CACHE_TTL", 24*time.Hour),
		},
		Timezone:    getEnv("TIMEZONE", "Asia/Taipei"),
		Environment: getEnv("ENVIRONMENT", "production"),
	}
}

// IsDevelopment reports whether detailed error messages may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable as a string slice
func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
