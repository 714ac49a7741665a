package store

import (
	"sync"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/google/btree"
)

// StockBalance is a point-in-time view of one stock.
type StockBalance struct {
	Name    string
	Balance int64
}

// stockLess orders stocks by name so the ledger can be walked in a
// stable order.
func stockLess(a, b *domain.Stock) bool {
	return a.Name < b.Name
}

// Ledger is the shared collection of stocks, keyed by name.
//
// The RWMutex only guards the tree's structure. Balances are protected
// by each stock's own lock, and the ledger never holds its structural
// lock while taking a stock lock.
type Ledger struct {
	mu     sync.RWMutex
	stocks *btree.BTreeG[*domain.Stock]
}

const ledgerDegree = 32

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{
		stocks: btree.NewG[*domain.Stock](ledgerDegree, stockLess),
	}
}

// Create inserts a stock with the given balance if name is not yet on
// the ledger. It returns the stock stored under name and true when this
// call created it. Concurrent creates of the same name have exactly one
// winner.
func (l *Ledger) Create(name string, balance int64) (*domain.Stock, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.stocks.Get(&domain.Stock{Name: name}); ok {
		return existing, false
	}
	s := domain.NewStock(name, balance)
	l.stocks.ReplaceOrInsert(s)
	return s, true
}

// Get returns the stock stored under name, or domain.ErrStockNotFound.
func (l *Ledger) Get(name string) (*domain.Stock, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.stocks.Get(&domain.Stock{Name: name})
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	return s, nil
}

// Reset discards every stock. Buyers still waiting on a discarded stock
// are released with domain.ErrStockRetired, and callers holding a stale
// handle can no longer change its balance.
func (l *Ledger) Reset() {
	l.mu.Lock()
	old := l.stocks
	l.stocks = btree.NewG[*domain.Stock](ledgerDegree, stockLess)
	l.mu.Unlock()

	old.Ascend(func(s *domain.Stock) bool {
		s.Retire()
		return true
	})
}

// Len returns the number of stocks on the ledger.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stocks.Len()
}

// Snapshot returns every stock and its balance, ordered by name.
// Balances are read one stock at a time, so the result is not an atomic
// view across stocks.
func (l *Ledger) Snapshot() []StockBalance {
	l.mu.RLock()
	handles := make([]*domain.Stock, 0, l.stocks.Len())
	l.stocks.Ascend(func(s *domain.Stock) bool {
		handles = append(handles, s)
		return true
	})
	l.mu.RUnlock()

	result := make([]StockBalance, len(handles))
	for i, s := range handles {
		result[i] = StockBalance{Name: s.Name, Balance: s.Balance()}
	}
	return result
}
