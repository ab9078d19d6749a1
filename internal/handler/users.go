package handler

import (
	"net/http"
	"strconv"

	"github.com/Dan9191/finance-service/internal/models"
)

type registerRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	PreferredCurrency string `json:"preferred_currency"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.svc.Users.Register(r.Context(), req.Name, req.Email, req.Password, req.PreferredCurrency)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	token, err := h.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Authorization", token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile returns the authenticated user
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Users.Profile(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile edits the authenticated user
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if !decode(w, r, &patch) {
		return
	}
	user, err := h.svc.Users.UpdateProfile(r.Context(), currentUser(r), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ConvertCurrency converts ?amount from ?from to ?to
func (h *Handler) ConvertCurrency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil || from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from, to and a numeric amount are required"})
		return
	}
	converted, rate, err := h.svc.Currency.Quote(r.Context(), amount, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"converted_amount": converted, "exchange_rate": rate})
}
