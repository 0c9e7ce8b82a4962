package handlers

import (
	"net/http"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
)

type notificationsResponse struct {
	Notifications []models.NotificationView `json:"notifications"`
}

// GetNotifications lists the caller's notifications and marks them read
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.List(r.Context(), currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if list == nil {
		list = []models.NotificationView{}
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: list})
}

func (h *Handler) DeleteNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.DeleteAll(r.Context(), currentUser(r).ID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted notification"})
}
