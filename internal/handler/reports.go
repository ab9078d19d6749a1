package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/models"
)

type reportRequest struct {
	Month int      `json:"month"`
	Year  int      `json:"year"`
	Tags  []string `json:"tags"`
}

// GenerateReport builds and stores a monthly report
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decode(w, r, &req) {
		return
	}
	report, err := h.svc.Reports.Generate(r.Context(), currentUser(r), req.Month, req.Year, req.Tags)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// ListReports returns stored report snapshots
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.Reports.List(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// ListNotifications returns all of the caller's notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	h.notifications(w, r, false)
}

// ListUnreadNotifications returns the caller's unread notifications
func (h *Handler) ListUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	h.notifications(w, r, true)
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request, unreadOnly bool) {
	var (
		out []models.Notification
		err error
	)
	if unreadOnly {
		out, err = h.svc.Notifications.ListUnread(r.Context(), currentUser(r))
	} else {
		out, err = h.svc.Notifications.List(r.Context(), currentUser(r))
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if out == nil {
		out = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, out)
}

type markReadRequest struct {
	NotificationIDs []int64 `json:"notification_ids"`
}

// MarkNotificationsRead flags notifications as read
func (h *Handler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.Notifications.MarkRead(r.Context(), currentUser(r), req.NotificationIDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
