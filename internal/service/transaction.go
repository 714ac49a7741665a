package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/efreitasn/stockserver/internal/engine"
	"github.com/google/uuid"
)

// sinkTimeout bounds how long one sink may hold a worker's slot.
const sinkTimeout = 2 * time.Second

// Sink receives every completed transaction. Errors are logged and never
// change the client's response.
type Sink interface {
	Record(ctx context.Context, rec domain.TransactionRecord) error
}

// TransactionService runs each client transaction as an admitted worker:
// it takes a slot from the admission controller, executes the transaction,
// reports it to the sinks and gives the slot back on every exit path.
type TransactionService struct {
	admission  *engine.Admission
	processor  *engine.Processor
	buyTimeout time.Duration
	sinks      []Sink
	logger     *slog.Logger
}

// NewTransactionService creates a TransactionService. A buyTimeout of
// zero lets buys wait for stock indefinitely.
func NewTransactionService(
	admission *engine.Admission,
	processor *engine.Processor,
	buyTimeout time.Duration,
	logger *slog.Logger,
	sinks ...Sink,
) *TransactionService {
	return &TransactionService{
		admission:  admission,
		processor:  processor,
		buyTimeout: buyTimeout,
		sinks:      sinks,
		logger:     logger,
	}
}

// Handle admits a worker (blocking while the server is at capacity),
// executes tx and returns its result. The caller's cancellation does not
// abort a transaction once admitted; only the configured buy timeout does.
// The slot is released before the sinks run, so sink I/O never holds it.
func (s *TransactionService) Handle(ctx context.Context, tx domain.Transaction) engine.Result {
	requestID := uuid.New().String()
	ctx = context.WithoutCancel(ctx)

	queuedAt := time.Now()
	start, res := s.admitted(ctx, tx)
	elapsed := time.Since(start)

	s.logger.Debug("transaction",
		slog.String("request_id", requestID),
		slog.String("trans", string(tx.Kind)),
		slog.String("stock", tx.Stock),
		slog.Int64("amount", tx.Amount),
		slog.String("outcome", string(res.Outcome)),
		slog.Duration("queued", start.Sub(queuedAt)),
		slog.Duration("duration", elapsed),
	)

	s.record(ctx, domain.TransactionRecord{
		RequestID:   requestID,
		Kind:        tx.Kind,
		Stock:       tx.Stock,
		Amount:      tx.Amount,
		Outcome:     string(res.Outcome),
		Message:     res.Message,
		Duration:    elapsed,
		CompletedAt: time.Now(),
	})

	return res
}

// admitted runs tx while holding an admission slot and returns when
// execution started along with the result.
func (s *TransactionService) admitted(ctx context.Context, tx domain.Transaction) (time.Time, engine.Result) {
	s.admission.Admit()
	defer s.admission.Release()

	start := time.Now()
	return start, s.execute(ctx, tx)
}

func (s *TransactionService) execute(ctx context.Context, tx domain.Transaction) engine.Result {
	if tx.Kind == domain.TransactionBuy && s.buyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.buyTimeout)
		defer cancel()
	}
	return s.processor.Execute(ctx, tx)
}

func (s *TransactionService) record(ctx context.Context, rec domain.TransactionRecord) {
	for _, sink := range s.sinks {
		sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		if err := sink.Record(sctx, rec); err != nil {
			s.logger.Warn("failed to record transaction",
				slog.String("request_id", rec.RequestID),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// Capacity describes the admission controller's current load.
type Capacity struct {
	Active  int
	Waiting int
	Max     int
}

// Capacity returns a snapshot of worker usage.
func (s *TransactionService) Capacity() Capacity {
	return Capacity{
		Active:  s.admission.Active(),
		Waiting: s.admission.Waiting(),
		Max:     s.admission.Max(),
	}
}
