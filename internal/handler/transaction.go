package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/efreitasn/stockserver/internal/service"
)

// outOfRangeAmount stands in for an amount too large to represent.
const outOfRangeAmount = -1

// TransactionHandler serves the plain-text transaction endpoint.
type TransactionHandler struct {
	txSvc *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// Handle handles GET /?trans=...&stock=...&amount=... and its path form
// GET /trans=...&stock=...&amount=...
//
// Every outcome, including an invalid request, is answered with 200 and a
// one-line body.
func (h *TransactionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	tx := decodeTransaction(r)
	res := h.txSvc.Handle(r.Context(), tx)
	WriteText(w, http.StatusOK, res.Message)
}

// decodeTransaction extracts a transaction from the request query, or from
// the path when no query string is present. A missing or unparseable
// amount decodes as 0; one that does not fit in an int64 decodes as a
// negative amount, which the processor rejects.
func decodeTransaction(r *http.Request) domain.Transaction {
	raw := r.URL.RawQuery
	if raw == "" {
		raw = strings.TrimPrefix(r.URL.EscapedPath(), "/")
	}

	q, _ := url.ParseQuery(raw) // partial values are kept on error

	amount, err := strconv.ParseInt(q.Get("amount"), 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		amount = outOfRangeAmount
	case err != nil:
		amount = 0
	}

	return domain.Transaction{
		Kind:   domain.TransactionKind(q.Get("trans")),
		Stock:  q.Get("stock"),
		Amount: amount,
	}
}
