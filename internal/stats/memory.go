package stats

import (
	"context"
	"sync"

	"github.com/efreitasn/stockserver/internal/domain"
)

// Counters maps outcome → count for one transaction kind.
type Counters map[string]int64

// Memory is an in-process counter store. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	total  int64
	byKind map[domain.TransactionKind]Counters
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		byKind: make(map[domain.TransactionKind]Counters),
	}
}

// Record counts rec under its kind and outcome. It never fails.
func (m *Memory) Record(_ context.Context, rec domain.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.byKind[rec.Kind]
	if c == nil {
		c = make(Counters)
		m.byKind[rec.Kind] = c
	}
	c[rec.Outcome]++
	m.total++
	return nil
}

// Total returns the number of recorded transactions.
func (m *Memory) Total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// ByKind returns a copy of the counters keyed by transaction kind.
func (m *Memory) ByKind() map[domain.TransactionKind]Counters {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[domain.TransactionKind]Counters, len(m.byKind))
	for kind, c := range m.byKind {
		cp := make(Counters, len(c))
		for outcome, n := range c {
			cp[outcome] = n
		}
		out[kind] = cp
	}
	return out
}
