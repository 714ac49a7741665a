package events

import (
	"time"

	"github.com/efreitasn/stockserver/internal/domain"
)

// Event is the wire form of a completed transaction, as sent to
// websocket subscribers and Kafka.
type Event struct {
	RequestID   string    `json:"request_id"`
	Transaction string    `json:"trans"`
	Stock       string    `json:"stock,omitempty"`
	Amount      int64     `json:"amount"`
	Outcome     string    `json:"outcome"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completed_at"`
}

// FromRecord converts a transaction record into an Event.
func FromRecord(rec domain.TransactionRecord) Event {
	return Event{
		RequestID:   rec.RequestID,
		Transaction: string(rec.Kind),
		Stock:       rec.Stock,
		Amount:      rec.Amount,
		Outcome:     rec.Outcome,
		Message:     rec.Message,
		CompletedAt: rec.CompletedAt.UTC(),
	}
}
