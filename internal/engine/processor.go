package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/efreitasn/stockserver/internal/store"
)

// Outcome classifies a transaction result for stats and the journal.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeCreated  Outcome = "created"
	OutcomeExists   Outcome = "exists"
	OutcomeNotFound Outcome = "not_found"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeTimedOut Outcome = "timed_out"
)

// Plain-text responses returned to clients.
const (
	MsgStocksReset    = "Stocks reset"
	MsgStockNotFound  = "Stock not found"
	MsgInvalidRequest = "Invalid request"
)

// Result is the outcome of one transaction. Message is the exact line
// written back to the client.
type Result struct {
	Message string
	Outcome Outcome
}

// Processor applies transactions to a ledger. Every operation reports
// through its Result; none of them fail.
type Processor struct {
	ledger *store.Ledger
}

// NewProcessor creates a Processor over the given ledger.
func NewProcessor(ledger *store.Ledger) *Processor {
	return &Processor{ledger: ledger}
}

// Execute validates tx and runs the matching operation. Unknown kinds,
// a missing stock name or a negative amount yield "Invalid request".
func (p *Processor) Execute(ctx context.Context, tx domain.Transaction) Result {
	if err := validate(tx); err != nil {
		return invalid()
	}

	switch tx.Kind {
	case domain.TransactionReset:
		return p.Reset()
	case domain.TransactionCreate:
		return p.Create(tx.Stock, tx.Amount)
	case domain.TransactionBuy:
		return p.Buy(ctx, tx.Stock, tx.Amount)
	case domain.TransactionSell:
		return p.Sell(tx.Stock, tx.Amount)
	case domain.TransactionStatus:
		return p.Status(tx.Stock)
	}
	return invalid()
}

func validate(tx domain.Transaction) error {
	if !tx.Kind.Valid() {
		return &domain.ValidationError{Message: fmt.Sprintf("unknown transaction %q", tx.Kind)}
	}
	if tx.Kind == domain.TransactionReset {
		return nil
	}
	if tx.Stock == "" {
		return &domain.ValidationError{Message: "stock is required"}
	}
	if tx.Amount < 0 {
		return &domain.ValidationError{Message: "amount must be >= 0"}
	}
	return nil
}

// Reset removes every stock from the ledger.
func (p *Processor) Reset() Result {
	p.ledger.Reset()
	return Result{Message: MsgStocksReset, Outcome: OutcomeOK}
}

// Create adds a stock with the given balance unless it already exists.
func (p *Processor) Create(name string, amount int64) Result {
	if _, created := p.ledger.Create(name, amount); !created {
		return Result{
			Message: fmt.Sprintf("Stock %s already exists", name),
			Outcome: OutcomeExists,
		}
	}
	return Result{
		Message: fmt.Sprintf("Stock %s created with balance = %d", name, amount),
		Outcome: OutcomeCreated,
	}
}

// Buy debits amount from the stock, blocking until the balance covers
// it. Without a deadline on ctx the wait is unbounded.
func (p *Processor) Buy(ctx context.Context, name string, amount int64) Result {
	s, err := p.ledger.Get(name)
	if err != nil {
		return notFound()
	}

	err = s.Withdraw(ctx, amount)
	switch {
	case err == nil:
		return updated(name)
	case errors.Is(err, domain.ErrStockRetired):
		return notFound()
	default:
		return Result{
			Message: fmt.Sprintf("Stock %s's balance not updated: timed out", name),
			Outcome: OutcomeTimedOut,
		}
	}
}

// Sell credits amount to the stock and wakes its waiting buyers. A sell
// that would overflow the balance is an invalid request.
func (p *Processor) Sell(name string, amount int64) Result {
	s, err := p.ledger.Get(name)
	if err != nil {
		return notFound()
	}
	if _, err := s.Deposit(amount); err != nil {
		if errors.Is(err, domain.ErrBalanceOverflow) {
			return invalid()
		}
		return notFound()
	}
	return updated(name)
}

// Status reports the stock's current balance.
func (p *Processor) Status(name string) Result {
	s, err := p.ledger.Get(name)
	if err != nil {
		return notFound()
	}
	return Result{
		Message: fmt.Sprintf("Balance for stock %s = %d", name, s.Balance()),
		Outcome: OutcomeOK,
	}
}

func updated(name string) Result {
	return Result{Message: fmt.Sprintf("Stock %s's balance updated", name), Outcome: OutcomeOK}
}

func notFound() Result {
	return Result{Message: MsgStockNotFound, Outcome: OutcomeNotFound}
}

func invalid() Result {
	return Result{Message: MsgInvalidRequest, Outcome: OutcomeInvalid}
}
