package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/models"
)

// CreateTransaction records an income or expense for the caller
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in models.NewTransaction
	if !decode(w, r, &in) {
		return
	}
	tx, err := h.svc.Ledger.Create(r.Context(), currentUser(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// ListTransactions returns the caller's transactions, newest first
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Ledger.List(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// GetTransaction returns one transaction
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Ledger.Get(r.Context(), pathID(r), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// UpdateTransaction applies a partial update
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch models.TransactionPatch
	if !decode(w, r, &patch) {
		return
	}
	tx, err := h.svc.Ledger.Update(r.Context(), pathID(r), currentUser(r), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// DeleteTransaction removes a transaction
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ledger.Delete(r.Context(), pathID(r), currentUser(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}
