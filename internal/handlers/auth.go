package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/services"
	"github.com/AnshRaj112/watchlist-backend/pkg/clientip"
)

// AuthResponse is returned by signup and login. Bio and Link are only
// present on login.
type AuthResponse struct {
	Token      string               `json:"token"`
	ID         primitive.ObjectID   `json:"_id"`
	FullName   string               `json:"fullName"`
	Username   string               `json:"username"`
	Email      string               `json:"email"`
	Bio        *string              `json:"bio,omitempty"`
	Watchlist  []primitive.ObjectID `json:"watchlist"`
	ProfileImg string               `json:"profileImg"`
	CoverImg   string               `json:"coverImg"`
	Link       *string              `json:"link,omitempty"`
}

func newAuthResponse(s *services.Session, withProfile bool) AuthResponse {
	u := s.User
	resp := AuthResponse{
		Token:      s.Token,
		ID:         u.ID,
		FullName:   u.FullName,
		Username:   u.Username,
		Email:      u.Email,
		Watchlist:  u.Watchlist,
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
	}
	if withProfile {
		bio, link := u.Bio, u.Link
		resp.Bio = &bio
		resp.Link = &link
	}
	return resp
}

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupInput
	if !h.decode(w, r, &req) {
		return
	}

	sess, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.auth.Tokens().SetCookie(w, sess.Token)
	writeJSON(w, http.StatusCreated, newAuthResponse(sess, false))
}

// Login handles username/password sign in
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if !h.decode(w, r, &req) {
		return
	}

	meta := services.ClientMeta{
		IPAddress: clientip.RealClientIP(r),
		UserAgent: r.UserAgent(),
	}
	sess, err := h.auth.Login(r.Context(), req, meta)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.auth.Tokens().SetCookie(w, sess.Token)
	writeJSON(w, http.StatusOK, newAuthResponse(sess, true))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Tokens().ClearCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.auth.Me(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}
