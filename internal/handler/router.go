package handler

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/efreitasn/stockserver/internal/events"
	"github.com/efreitasn/stockserver/internal/service"
	"github.com/efreitasn/stockserver/internal/stats"
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all routes registered and request
// logging. A nil limiter disables rate limiting on the transaction route.
func NewRouter(
	txSvc *service.TransactionService,
	stockSvc *service.StockService,
	counters *stats.Memory,
	hub *events.Hub,
	limiter *RateLimiter,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))

	// Create handlers.
	txH := NewTransactionHandler(txSvc)
	stockH := NewStockHandler(stockSvc)
	statsH := NewStatsHandler(txSvc, counters, hub)
	eventsH := NewEventsHandler(hub, logger)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/stocks", stockH.List)
	r.Get("/stats", statsH.Get)
	r.Get("/events", eventsH.Stream)

	// Transaction routes. The path form "/trans=..." is matched by the
	// catch-all.
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Get("/", txH.Handle)
		r.Get("/*", txH.Handle)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"Only GET is supported")
	})

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	w.wroteHeader = true
	return hj.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
