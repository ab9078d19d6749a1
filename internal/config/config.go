package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	DBConn      string
	DataBackend string
	LogLevel    string

	JWTSecret string
	JWTTTL    time.Duration

	RatesProvider  string
	ECBURL         string
	FrankfurterURL string
	RatesTimeout   time.Duration
	RatesCacheTTL  time.Duration

	SweepSchedule string

	GoalAllocationScale models.PercentScale
	GoalDirectScale     models.PercentScale

	RateLimitRPS   float64
	RateLimitBurst int
}

// NewConfig loads configuration from environment variables, reading a .env
// file first when one exists
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	var errs []string
	allocation, err := models.ParsePercentScale(getEnv("GOAL_ALLOCATION_SCALE", string(models.ScalePercent)))
	if err != nil {
		errs = append(errs, err.Error())
	}
	direct, err := models.ParsePercentScale(getEnv("GOAL_DIRECT_SCALE", string(models.ScalePercent)))
	if err != nil {
		errs = append(errs, err.Error())
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBConn:      getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=finance sslmode=disable"),
		DataBackend: getEnv("DATA_BACKEND", "postgres"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		RatesProvider:  strings.ToLower(getEnv("RATES_PROVIDER", "ecb")),
		ECBURL:         getEnv("ECB_URL", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"),
		FrankfurterURL: getEnv("FRANKFURTER_URL", "https://api.frankfurter.app"),
		RatesTimeout:   getEnvDuration("RATES_TIMEOUT", 10*time.Second),
		RatesCacheTTL:  getEnvDuration("RATES_CACHE_TTL", 0),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 1m"),

		GoalAllocationScale: allocation,
		GoalDirectScale:     direct,

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 30),
	}

	if cfg.DataBackend != "postgres" && cfg.DataBackend != "memory" {
		errs = append(errs, fmt.Sprintf("invalid DATA_BACKEND %q: must be postgres or memory", cfg.DataBackend))
	}
	if cfg.DataBackend == "postgres" && cfg.DBConn == "" {
		errs = append(errs, "DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, "JWT_TTL must be positive")
	}
	if cfg.RatesProvider != "ecb" && cfg.RatesProvider != "frankfurter" {
		errs = append(errs, fmt.Sprintf("invalid RATES_PROVIDER %q: must be ecb or frankfurter", cfg.RatesProvider))
	}
	if cfg.RatesCacheTTL < 0 {
		errs = append(errs, "RATES_CACHE_TTL cannot be negative")
	}
	if cfg.SweepSchedule == "" {
		errs = append(errs, "SWEEP_SCHEDULE is required")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst < 1 {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultVal
}
