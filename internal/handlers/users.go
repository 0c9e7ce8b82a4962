package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
)

type searchResponse struct {
	Users []models.UserSummary `json:"users"`
}

type updateResponse struct {
	User *models.User `json:"user"`
}

// GetProfile returns a user's public profile by handle
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Profile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ToggleWatchlist adds or removes the user in {id} from the caller's watchlist
func (h *Handler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.ToggleWatchlist(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	cards, err := h.users.Watchlist(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Users: users})
}

// UpdateUser edits the caller's profile, password and images
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileInput
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), currentUser(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{User: user})
}
