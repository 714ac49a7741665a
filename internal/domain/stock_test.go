package domain

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// waitForWaiters polls until n buyers are blocked on s or the deadline passes.
func waitForWaiters(t *testing.T, s *Stock, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Waiters() != n {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %d waiters, have %d", n, s.Waiters())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStock_DepositAndBalance(t *testing.T) {
	s := NewStock("ACME", 100)

	got, err := s.Deposit(50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 150 {
		t.Fatalf("Deposit returned %d, want 150", got)
	}
	if s.Balance() != 150 {
		t.Fatalf("Balance() = %d, want 150", s.Balance())
	}
}

func TestStock_WithdrawImmediate(t *testing.T) {
	s := NewStock("ACME", 100)

	if err := s.Withdraw(context.Background(), 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Balance() != 60 {
		t.Fatalf("Balance() = %d, want 60", s.Balance())
	}
}

func TestStock_WithdrawBlocksUntilDeposit(t *testing.T) {
	s := NewStock("ACME", 10)
	done := make(chan error, 1)

	go func() {
		done <- s.Withdraw(context.Background(), 1000)
	}()

	waitForWaiters(t, s, 1)

	select {
	case err := <-done:
		t.Fatalf("withdraw returned early: %v", err)
	default:
	}

	// Not enough yet: the buyer must go back to waiting.
	if _, err := s.Deposit(500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitForWaiters(t, s, 1)

	if _, err := s.Deposit(500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("withdraw did not complete after deposit")
	}

	if s.Balance() != 10 {
		t.Fatalf("Balance() = %d, want 10", s.Balance())
	}
}

func TestStock_WithdrawContextCancelled(t *testing.T) {
	s := NewStock("ACME", 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Withdraw(ctx, 5)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if s.Balance() != 0 {
		t.Fatalf("Balance() = %d, want 0", s.Balance())
	}
	if s.Waiters() != 0 {
		t.Fatalf("Waiters() = %d, want 0", s.Waiters())
	}
}

func TestStock_RetireReleasesWaiters(t *testing.T) {
	s := NewStock("ACME", 0)
	done := make(chan error, 3)

	for i := 0; i < 3; i++ {
		go func() {
			done <- s.Withdraw(context.Background(), 10)
		}()
	}
	waitForWaiters(t, s, 3)

	s.Retire()

	for i := 0; i < 3; i++ {
		select {
		case err := <-done:
			if err != ErrStockRetired {
				t.Fatalf("expected ErrStockRetired, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("waiter not released by Retire")
		}
	}

	if _, err := s.Deposit(1); err != ErrStockRetired {
		t.Fatalf("expected ErrStockRetired on deposit, got %v", err)
	}
}

func TestStock_CompetingBuyersNeverOverdraw(t *testing.T) {
	s := NewStock("ACME", 0)
	const buyers = 20
	var wg sync.WaitGroup

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Withdraw(context.Background(), 5)
		}()
	}
	waitForWaiters(t, s, buyers)

	// Each deposit serves exactly one buyer; the rest must keep waiting.
	for i := 0; i < buyers; i++ {
		if _, err := s.Deposit(5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b := s.Balance(); b < 0 {
			t.Fatalf("balance went negative: %d", b)
		}
	}
	wg.Wait()

	if s.Balance() != 0 {
		t.Fatalf("Balance() = %d, want 0", s.Balance())
	}
}

func TestStock_DepositOverflow(t *testing.T) {
	s := NewStock("ACME", math.MaxInt64-10)

	got, err := s.Deposit(11)
	if !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("Deposit err = %v, want ErrBalanceOverflow", err)
	}
	if got != math.MaxInt64-10 || s.Balance() != math.MaxInt64-10 {
		t.Fatalf("balance changed on overflow: returned %d, have %d", got, s.Balance())
	}

	if got, err := s.Deposit(10); err != nil || got != math.MaxInt64 {
		t.Fatalf("Deposit(10) = %d, %v; want %d, nil", got, err, int64(math.MaxInt64))
	}
}
