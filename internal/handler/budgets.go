package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/models"
)

type budgetRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Month    string  `json:"month"`
}

// CreateBudget creates a budget for the caller
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decode(w, r, &req) {
		return
	}
	budget, err := h.svc.Budgets.CreateBudget(r.Context(), currentUser(r), req.Category, req.Amount, req.Month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

// ListBudgets returns the caller's budgets
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.svc.Budgets.ListBudgets(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

// UpdateBudget edits a budget's category, cap or month
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decode(w, r, &req) {
		return
	}
	budget, err := h.svc.Budgets.UpdateBudget(r.Context(), pathID(r), currentUser(r), req.Category, req.Amount, req.Month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// DeleteBudget removes a budget
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Budgets.DeleteBudget(r.Context(), pathID(r), currentUser(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
}
