package service

import "github.com/efreitasn/stockserver/internal/store"

// StockService answers read-only ledger queries outside the admission
// controller.
type StockService struct {
	ledger *store.Ledger
}

// NewStockService creates a new StockService.
func NewStockService(ledger *store.Ledger) *StockService {
	return &StockService{ledger: ledger}
}

// List returns every stock and its balance, ordered by name.
func (s *StockService) List() []store.StockBalance {
	return s.ledger.Snapshot()
}
