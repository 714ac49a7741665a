package domain

import (
	"context"
	"math"
	"sync"
)

// Stock is one instrument on the ledger: a named balance guarded by its
// own mutex. Buyers that need more than the current balance wait on a
// condition bound to that mutex and are woken by every deposit.
//
// A Stock is always handled by pointer so the identity of its lock never
// changes while the ledger is restructured.
type Stock struct {
	Name string

	mu      sync.Mutex
	cond    *sync.Cond
	balance int64
	retired bool
	waiters int
}

// NewStock creates a stock with the given opening balance.
func NewStock(name string, balance int64) *Stock {
	s := &Stock{
		Name:    name,
		balance: balance,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Balance returns the current balance. Safe for concurrent use.
func (s *Stock) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Deposit adds amount to the balance and wakes every waiting buyer so
// each can re-check whether it can now be served. It returns the new
// balance, or ErrStockRetired if the stock was removed from the ledger.
// A deposit that would overflow the balance fails with ErrBalanceOverflow
// and leaves it unchanged.
func (s *Stock) Deposit(amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retired {
		return 0, ErrStockRetired
	}
	if amount > math.MaxInt64-s.balance {
		return s.balance, ErrBalanceOverflow
	}
	s.balance += amount
	s.cond.Broadcast()
	return s.balance, nil
}

// Withdraw blocks until the balance covers amount, then subtracts it.
// The predicate is re-evaluated after every wake-up, so spurious wakes
// and competing buyers that drain the balance first are tolerated.
//
// Withdraw returns ErrStockRetired if the stock is retired while waiting,
// or ctx.Err() if ctx is done first. In both cases the balance is left
// untouched. A context that is never done waits forever.
func (s *Stock) Withdraw(ctx context.Context, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.retired && s.balance >= amount {
		s.balance -= amount
		return nil
	}

	// Wake this waiter when ctx is done. The broadcast is issued under
	// the mutex so it cannot slip in between the check and Wait.
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cond.Broadcast()
	})
	defer stop()

	for !s.retired && s.balance < amount {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.waiters++
		s.cond.Wait()
		s.waiters--
	}
	if s.retired {
		return ErrStockRetired
	}
	s.balance -= amount
	return nil
}

// Retire marks the stock as removed from the ledger and releases every
// waiting buyer. Later deposits and withdrawals fail with ErrStockRetired.
func (s *Stock) Retire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retired = true
	s.cond.Broadcast()
}

// Waiters returns the number of buyers currently blocked in Withdraw.
func (s *Stock) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters
}
