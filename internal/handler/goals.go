package handler

import (
	"net/http"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
)

type goalRequest struct {
	Name             string    `json:"name"`
	TargetAmount     float64   `json:"target_amount"`
	SavedAmount      float64   `json:"saved_amount"`
	TargetDate       time.Time `json:"target_date"`
	PercentageChange float64   `json:"percentage_change"`
}

// CreateGoal creates a savings goal for the caller
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decode(w, r, &req) {
		return
	}
	goal, err := h.svc.Goals.CreateGoal(r.Context(), currentUser(r), req.Name, req.TargetAmount, req.SavedAmount,
		req.TargetDate, req.PercentageChange)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// ListGoals returns the caller's goals
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.Goals.ListGoals(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

// UpdateGoal edits a goal
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch models.GoalPatch
	if !decode(w, r, &patch) {
		return
	}
	goal, err := h.svc.Goals.UpdateGoal(r.Context(), pathID(r), currentUser(r), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// ModifyGoal applies a direct income/expense to a goal's saved amount
func (h *Handler) ModifyGoal(w http.ResponseWriter, r *http.Request) {
	var adj models.GoalAdjustment
	if !decode(w, r, &adj) {
		return
	}
	goal, err := h.svc.Goals.DirectModify(r.Context(), pathID(r), currentUser(r), adj)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// DeleteGoal removes a goal
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Goals.DeleteGoal(r.Context(), pathID(r), currentUser(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Goal deleted successfully"})
}
