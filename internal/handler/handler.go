package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dan9191/finance-service/internal/middleware"
	"github.com/Dan9191/finance-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Router builds the HTTP routes. Everything except registration, login and
// currency conversion requires a bearer token signed with jwtSecret.
func (h *Handler) Router(jwtSecret string, mw ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(mw...)

	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/currency/convert", h.ConvertCurrency).Methods("GET")

	// Protected routes
	auth := r.PathPrefix("/").Subrouter()
	auth.Use(middleware.AuthMiddleware(jwtSecret))

	auth.HandleFunc("/users/me", h.GetProfile).Methods("GET")
	auth.HandleFunc("/users/me", h.UpdateProfile).Methods("PUT")

	auth.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	auth.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	auth.HandleFunc("/transactions/{id:[0-9]+}", h.GetTransaction).Methods("GET")
	auth.HandleFunc("/transactions/{id:[0-9]+}", h.UpdateTransaction).Methods("PUT")
	auth.HandleFunc("/transactions/{id:[0-9]+}", h.DeleteTransaction).Methods("DELETE")

	auth.HandleFunc("/budgets", h.CreateBudget).Methods("POST")
	auth.HandleFunc("/budgets", h.ListBudgets).Methods("GET")
	auth.HandleFunc("/budgets/{id:[0-9]+}", h.UpdateBudget).Methods("PUT")
	auth.HandleFunc("/budgets/{id:[0-9]+}", h.DeleteBudget).Methods("DELETE")

	auth.HandleFunc("/goals", h.CreateGoal).Methods("POST")
	auth.HandleFunc("/goals", h.ListGoals).Methods("GET")
	auth.HandleFunc("/goals/{id:[0-9]+}", h.UpdateGoal).Methods("PUT")
	auth.HandleFunc("/goals/{id:[0-9]+}", h.DeleteGoal).Methods("DELETE")
	auth.HandleFunc("/goals/{id:[0-9]+}/modify", h.ModifyGoal).Methods("POST")

	auth.HandleFunc("/reports/monthly", h.GenerateReport).Methods("POST")
	auth.HandleFunc("/reports", h.ListReports).Methods("GET")

	auth.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	auth.HandleFunc("/notifications/unread", h.ListUnreadNotifications).Methods("GET")
	auth.HandleFunc("/notifications/read", h.MarkNotificationsRead).Methods("POST")

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFoundOrUnauthorized), errors.Is(err, service.ErrGoalNotFound),
		errors.Is(err, service.ErrOwnerNotFound), errors.Is(err, service.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConversionUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps a service error to a status; internal details are logged, not returned
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		msg = "Server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return false
	}
	return true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func currentUser(r *http.Request) int64 {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}
