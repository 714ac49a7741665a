package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/efreitasn/stockserver/internal/config"
	"github.com/efreitasn/stockserver/internal/engine"
	"github.com/efreitasn/stockserver/internal/events"
	"github.com/efreitasn/stockserver/internal/handler"
	"github.com/efreitasn/stockserver/internal/journal"
	"github.com/efreitasn/stockserver/internal/service"
	"github.com/efreitasn/stockserver/internal/stats"
	"github.com/efreitasn/stockserver/internal/store"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	maxWorkers := flag.Int("max-workers", 0, "Maximum concurrent transactions (overrides MAX_WORKERS)")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *maxWorkers != 0 {
		if *maxWorkers < 1 {
			slog.Error("invalid -max-workers", slog.Int("value", *maxWorkers))
			os.Exit(1)
		}
		cfg.MaxWorkers = *maxWorkers
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()
	slog.SetDefault(logger)

	// Core.
	ledger := store.NewLedger()
	processor := engine.NewProcessor(ledger)
	admission := engine.NewAdmission(cfg.MaxWorkers)

	if cfg.SeedFile != "" {
		if err := seedLedger(ledger, cfg.SeedFile, logger); err != nil {
			logger.Error("failed to seed stocks", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Sinks. In-memory counters and the event hub are always on.
	counters := stats.NewMemory()
	hub := events.NewHub(logger)
	sinks := []service.Sink{counters, hub}

	var closers []io.Closer

	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			logger.Error("failed to open journal", slog.String("error", err.Error()))
			os.Exit(1)
		}
		closers = append(closers, j)
		sinks = append(sinks, j)
		logger.Info("journal enabled", slog.String("path", cfg.JournalPath))
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			logger.Error("failed to reach redis",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		closers = append(closers, rdb)
		sinks = append(sinks, stats.NewRedis(rdb, stats.WithPrefix(cfg.RedisPrefix)))
		logger.Info("redis stats enabled", slog.String("addr", cfg.RedisAddr))
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		closers = append(closers, pub)
		sinks = append(sinks, pub)
		logger.Info("kafka events enabled",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	}

	// Services.
	txSvc := service.NewTransactionService(admission, processor, cfg.BuyTimeout, logger, sinks...)
	stockSvc := service.NewStockService(ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var limiter *handler.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.StartJanitor(ctx)
	}

	// Router.
	router := handler.NewRouter(txSvc, stockSvc, counters, hub, limiter, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.Int("max_workers", cfg.MaxWorkers),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, stop the janitor, close sinks.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close sink", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

// newLogger builds the JSON logger. When LOG_FILE is set, output is also
// written to a size-rotated file.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	return logger, closeFn
}

// seedLedger creates the stocks listed in the seed file. Duplicate names
// keep the first balance.
func seedLedger(ledger *store.Ledger, path string, logger *slog.Logger) error {
	seed, err := config.LoadSeed(path)
	if err != nil {
		return err
	}
	for _, s := range seed.Stocks {
		if _, created := ledger.Create(s.Name, s.Balance); !created {
			logger.Warn("duplicate seed stock ignored", slog.String("stock", s.Name))
		}
	}
	logger.Info("stocks seeded", slog.Int("count", ledger.Len()))
	return nil
}
