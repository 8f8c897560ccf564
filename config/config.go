package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server settings
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Debug           bool

	// Application paths
	LogDir string
	DBPath string

	// Digest defaults
	DefaultLanguage    string
	DefaultModel       string
	MinTranscriptChars int

	// Provider settings
	OpenAIAPIKey    string
	FallbackAPIKey  string
	FallbackBaseURL string
	FallbackModel   string
	ProviderTimeout time.Duration

	// Transcript acquisition
	FetchTimeout time.Duration

	// Retry settings
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration

	// Cache settings
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration

	// Rate limiting
	RateLimit      int
	RateLimitBurst int
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      GetEnv("SERVER_PORT", "8080"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 3*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Debug:           getEnvAsBool("DEBUG", false),

		LogDir: GetEnv("LOG_DIR", "./logs"),
		DBPath: GetEnv("DB_PATH", "./data/analytics.db"),

		DefaultLanguage:    GetEnv("DEFAULT_LANGUAGE", "en"),
		DefaultModel:       GetEnv("DEFAULT_MODEL", "gpt-4o-mini"),
		MinTranscriptChars: getEnvAsInt("MIN_TRANSCRIPT_CHARS", 50),

		OpenAIAPIKey:    GetEnv("OPENAI_API_KEY", ""),
		FallbackAPIKey:  GetEnv("FALLBACK_API_KEY", ""),
		FallbackBaseURL: GetEnv("FALLBACK_BASE_URL", "https://openrouter.ai/api/v1"),
		FallbackModel:   GetEnv("FALLBACK_MODEL", "meta-llama/llama-3.1-70b-instruct"),
		ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),

		FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second),

		MaxRetries:        getEnvAsInt("MAX_RETRIES", 2),
		InitialBackoff:    getEnvAsDuration("INITIAL_BACKOFF", 2*time.Second),
		BackoffMultiplier: getEnvAsFloat("BACKOFF_MULTIPLIER", 2.0),
		MaxBackoff:        getEnvAsDuration("MAX_BACKOFF", 30*time.Second),

		CacheTTL:           getEnvAsDuration("CACHE_TTL", 6*time.Hour),
		CacheSweepInterval: getEnvAsDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),

		RateLimit:      getEnvAsInt("RATE_LIMIT", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid float, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func Validate(cfg *Config) error {
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	if cfg.DBPath == "" {
		return errors.New("database path is required")
	}
	if cfg.DefaultLanguage == "" {
		return errors.New("default language is required")
	}
	if cfg.DefaultModel == "" {
		return errors.New("default model is required")
	}
	if cfg.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be greater than 0")
	}
	if cfg.ProviderTimeout <= 0 {
		return errors.New("provider timeout must be greater than 0")
	}
	if cfg.MaxRetries < 0 {
		return errors.New("max retries must not be negative")
	}
	if cfg.BackoffMultiplier < 1 {
		return errors.New("backoff multiplier must be at least 1")
	}
	if cfg.CacheTTL <= 0 {
		return errors.New("cache TTL must be greater than 0")
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	return nil
}
