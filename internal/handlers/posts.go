package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
)

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) writeFeed(w http.ResponseWriter, r *http.Request, posts []models.PostView, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.PostView{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.All(r.Context())
	h.writeFeed(w, r, posts, err)
}

// GetWatchlistPosts returns posts written by the accounts the caller watches
func (h *Handler) GetWatchlistPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.WatchlistFeed(r.Context(), currentUser(r))
	h.writeFeed(w, r, posts, err)
}

func (h *Handler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ByUser(r.Context(), chi.URLParam(r, "username"))
	h.writeFeed(w, r, posts, err)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePostInput
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), currentUser(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// DeletePost removes a post owned by the caller
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}

func (h *Handler) CommentOnPost(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.posts.Comment(r.Context(), currentUser(r), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// LikeUnlikePost toggles the caller's like on a post
func (h *Handler) LikeUnlikePost(w http.ResponseWriter, r *http.Request) {
	msg, err := h.posts.ToggleLike(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
