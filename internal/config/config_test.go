package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %q, want empty", cfg.LogFile)
	}
	if cfg.LogMaxSizeMB != 10 || cfg.LogMaxBackups != 3 || cfg.LogMaxAgeDays != 28 {
		t.Errorf("log rotation = %d/%d/%d, want 10/3/28", cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays)
	}
	if cfg.MaxWorkers != 20 {
		t.Errorf("MaxWorkers = %d, want 20", cfg.MaxWorkers)
	}
	if cfg.BuyTimeout != 0 {
		t.Errorf("BuyTimeout = %v, want 0", cfg.BuyTimeout)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.RedisPrefix != "stockserver:stats" {
		t.Errorf("RedisPrefix = %q", cfg.RedisPrefix)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers = %v, want nil", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "stock-transactions" {
		t.Errorf("KafkaTopic = %q", cfg.KafkaTopic)
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 1 {
		t.Errorf("rate limit = %v/%d, want 0/1", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/var/log/stockserver.log")
	t.Setenv("MAX_WORKERS", "4")
	t.Setenv("BUY_TIMEOUT", "30s")
	t.Setenv("SEED_FILE", "seed.yaml")
	t.Setenv("JOURNAL_PATH", "data/journal.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("RATE_LIMIT_RPS", "12.5")
	t.Setenv("RATE_LIMIT_BURST", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogFile != "/var/log/stockserver.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, want 4", cfg.MaxWorkers)
	}
	if cfg.BuyTimeout != 30*time.Second {
		t.Errorf("BuyTimeout = %v, want 30s", cfg.BuyTimeout)
	}
	if cfg.SeedFile != "seed.yaml" || cfg.JournalPath != "data/journal.db" {
		t.Errorf("SeedFile/JournalPath = %q/%q", cfg.SeedFile, cfg.JournalPath)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("Redis = %q/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.RateLimitRPS != 12.5 || cfg.RateLimitBurst != 25 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "not-a-number"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_MAX_SIZE_MB", "big"},
		{"MAX_WORKERS", "0"},
		{"MAX_WORKERS", "-2"},
		{"MAX_WORKERS", "many"},
		{"BUY_TIMEOUT", "-1s"},
		{"REDIS_DB", "first"},
		{"RATE_LIMIT_RPS", "-1"},
		{"RATE_LIMIT_RPS", "fast"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_ZeroBurstWithRateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero burst with rate limiting enabled")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	for _, key := range durationEnvKeys {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "not-a-duration")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}
