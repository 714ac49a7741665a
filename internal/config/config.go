package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the stock server.
type Config struct {
	Port     int
	LogLevel string

	// LogFile, when set, receives a rotated copy of the log output.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	MaxWorkers int
	BuyTimeout time.Duration // 0 waits forever

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SeedFile    string
	JournalPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	KafkaBrokers []string
	KafkaTopic   string

	RateLimitRPS   float64 // 0 disables rate limiting
	RateLimitBurst int
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	logMaxSize, err := getInt("LOG_MAX_SIZE_MB", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_SIZE_MB: %w", err)
	}
	logMaxBackups, err := getInt("LOG_MAX_BACKUPS", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_BACKUPS: %w", err)
	}
	logMaxAge, err := getInt("LOG_MAX_AGE_DAYS", 28)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_AGE_DAYS: %w", err)
	}

	maxWorkers, err := getInt("MAX_WORKERS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_WORKERS: %w", err)
	}
	if maxWorkers < 1 {
		return nil, fmt.Errorf("invalid MAX_WORKERS: %d, must be >= 1", maxWorkers)
	}

	buyTimeout, err := getDuration("BUY_TIMEOUT", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid BUY_TIMEOUT: %w", err)
	}
	if buyTimeout < 0 {
		return nil, fmt.Errorf("invalid BUY_TIMEOUT: %v, must be >= 0", buyTimeout)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	// Zero by default: a blocked buy may answer long after the request.
	writeTimeout, err := getDuration("WRITE_TIMEOUT", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rateRPS, err := getFloat("RATE_LIMIT_RPS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if rateRPS < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %v, must be >= 0", rateRPS)
	}
	rateBurst, err := getInt("RATE_LIMIT_BURST", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if rateRPS > 0 && rateBurst < 1 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %d, must be >= 1", rateBurst)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		LogFile:         getStr("LOG_FILE", ""),
		LogMaxSizeMB:    logMaxSize,
		LogMaxBackups:   logMaxBackups,
		LogMaxAgeDays:   logMaxAge,
		MaxWorkers:      maxWorkers,
		BuyTimeout:      buyTimeout,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
		SeedFile:        getStr("SEED_FILE", ""),
		JournalPath:     getStr("JOURNAL_PATH", ""),
		RedisAddr:       getStr("REDIS_ADDR", ""),
		RedisPassword:   getStr("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		RedisPrefix:     getStr("REDIS_PREFIX", "stockserver:stats"),
		KafkaBrokers:    getList("KAFKA_BROKERS"),
		KafkaTopic:      getStr("KAFKA_TOPIC", "stock-transactions"),
		RateLimitRPS:    rateRPS,
		RateLimitBurst:  rateBurst,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

// getList splits a comma-separated variable, dropping empty items.
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
