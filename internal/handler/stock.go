package handler

import (
	"net/http"

	"github.com/efreitasn/stockserver/internal/service"
)

// StockHandler handles HTTP requests for stock endpoints.
type StockHandler struct {
	stockSvc *service.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockSvc *service.StockService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc}
}

// stockResponse is a single entry of the GET /stocks response.
type stockResponse struct {
	Stock   string `json:"stock"`
	Balance int64  `json:"balance"`
}

// List handles GET /stocks. Stocks are sorted by name.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	balances := h.stockSvc.List()

	resp := make([]stockResponse, len(balances))
	for i, b := range balances {
		resp[i] = stockResponse{Stock: b.Name, Balance: b.Balance}
	}

	WriteJSON(w, http.StatusOK, resp)
}
