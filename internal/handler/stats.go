package handler

import (
	"net/http"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/efreitasn/stockserver/internal/events"
	"github.com/efreitasn/stockserver/internal/service"
	"github.com/efreitasn/stockserver/internal/stats"
)

// StatsHandler reports worker usage and transaction counters.
type StatsHandler struct {
	txSvc    *service.TransactionService
	counters *stats.Memory
	hub      *events.Hub
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(txSvc *service.TransactionService, counters *stats.Memory, hub *events.Hub) *StatsHandler {
	return &StatsHandler{txSvc: txSvc, counters: counters, hub: hub}
}

// statsResponse is the JSON response for GET /stats.
type statsResponse struct {
	ActiveWorkers  int                                       `json:"active_workers"`
	MaxWorkers     int                                       `json:"max_workers"`
	WaitingWorkers int                                       `json:"waiting_workers"`
	Subscribers    int                                       `json:"subscribers"`
	Total          int64                                     `json:"total"`
	Transactions   map[domain.TransactionKind]stats.Counters `json:"transactions"`
}

// Get handles GET /stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.txSvc.Capacity()

	resp := statsResponse{
		ActiveWorkers:  c.Active,
		MaxWorkers:     c.Max,
		WaitingWorkers: c.Waiting,
		Total:          h.counters.Total(),
		Transactions:   h.counters.ByKind(),
	}
	if h.hub != nil {
		resp.Subscribers = h.hub.Subscribers()
	}

	WriteJSON(w, http.StatusOK, resp)
}
