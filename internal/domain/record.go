package domain

import "time"

// TransactionRecord describes one completed transaction. It is handed to
// the stats, journal and event sinks after the response is decided.
type TransactionRecord struct {
	RequestID   string
	Kind        TransactionKind
	Stock       string
	Amount      int64
	Outcome     string
	Message     string
	Duration    time.Duration
	CompletedAt time.Time
}
