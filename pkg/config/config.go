package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional - run history)
	Database DatabaseConfig

	// Redis (optional - distributed rate limiting)
	Redis RedisConfig

	// External providers
	Market MarketConfig
	FX     FXConfig

	// Analysis defaults
	Analysis AnalysisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
// run history 저장용 (URL 미설정 시 history 기능 비활성화)
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MarketConfig holds market data provider configuration
type MarketConfig struct {
	YahooBaseURL string
	NaverBaseURL string

	// Per-candidate fetch timeout (한 종목이 느려도 배치 전체가 멈추지 않도록)
	FetchTimeout time.Duration

	// Requests per second against the provider
	RateLimit float64
}

// FXConfig holds exchange rate provider configuration
type FXConfig struct {
	BaseURL string

	// TTL for the in-process rate cache
	CacheTTL time.Duration
}

// AnalysisConfig holds default analysis parameters
type AnalysisConfig struct {
	// Reporting currency for price normalization
	ReportingCurrency string

	// FX warm-up schedule (cron spec); empty disables the scheduler
	FXWarmSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External providers
		Market: MarketConfig{
			YahooBaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			NaverBaseURL: getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			FetchTimeout: getEnvAsDuration("MARKET_FETCH_TIMEOUT", "15s"),
			RateLimit:    getEnvAsFloat("MARKET_RATE_LIMIT", 5.0),
		},

		FX: FXConfig{
			BaseURL:  getEnv("FX_BASE_URL", "https://open.er-api.com/v6"),
			CacheTTL: getEnvAsDuration("FX_CACHE_TTL", "5m"),
		},

		Analysis: AnalysisConfig{
			ReportingCurrency: getEnv("REPORTING_CURRENCY", "KRW"),
			FXWarmSchedule:    getEnv("FX_WARM_SCHEDULE", ""),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Analysis.ReportingCurrency != "KRW" && c.Analysis.ReportingCurrency != "USD" {
		return fmt.Errorf("REPORTING_CURRENCY must be KRW or USD")
	}

	if c.Market.FetchTimeout <= 0 {
		return fmt.Errorf("MARKET_FETCH_TIMEOUT must be positive")
	}

	return nil
}

// HistoryEnabled reports whether the run-history repository should be wired
func (c *Config) HistoryEnabled() bool {
	return c.Database.URL != ""
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
