package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	GarageName        string
	Capacity          int
	TokenBase         int
	MonthlyPermitBase int
	SinglePermitBase  int
	RateLimitRPS      float64
	RateLimitBurst    int
	ReportSchedule    string
	LogLevel          string
	OTelServiceName   string
	OTelEndpoint      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              envOr("APP_PORT", "8080"),
		GarageName:        envOr("GARAGE_NAME", "Urban City Parking"),
		Capacity:          envOrInt("GARAGE_CAPACITY", 300),
		TokenBase:         envOrInt("TOKEN_BASE", 1500),
		MonthlyPermitBase: envOrInt("MONTHLY_PERMIT_BASE", 6000),
		SinglePermitBase:  envOrInt("SINGLE_PERMIT_BASE", 9000),
		RateLimitRPS:      envOrFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:    envOrInt("RATE_LIMIT_BURST", 40),
		ReportSchedule:    envOr("REPORT_CRON", "0 0 * * *"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		OTelServiceName:   envOr("OTEL_SERVICE_NAME", "parking-garage-service"),
		OTelEndpoint:      envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
