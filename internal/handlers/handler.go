package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/metrics"
	"github.com/AnshRaj112/watchlist-backend/internal/middleware"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
)

// Deps is everything the HTTP handlers need.
type Deps struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Posts         *services.PostService
	Notifications *services.NotificationService
	Quotes        *services.QuoteService
	Metrics       *metrics.Metrics
	Log           *slog.Logger

	AllowedOrigins []string
	MaxBodyBytes   int64
}

type Handler struct {
	auth          *services.AuthService
	users         *services.UserService
	posts         *services.PostService
	notifications *services.NotificationService
	quotes        *services.QuoteService
	metrics       *metrics.Metrics
	log           *slog.Logger

	upgrader websocket.Upgrader
	maxBody  int64
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		auth:          d.Auth,
		users:         d.Users,
		posts:         d.Posts,
		notifications: d.Notifications,
		quotes:        d.Quotes,
		metrics:       d.Metrics,
		log:           log,
		maxBody:       d.MaxBodyBytes,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(d.AllowedOrigins),
	}
	return h
}

// originChecker accepts same-origin requests, clients that send no Origin
// (native apps, curl) and the configured browser origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// fail writes err as {"error": message}. Internal and upstream failures are
// logged with their cause; clients only ever see the public message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.KindInternal, apperr.KindUpstream:
		h.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"kind", string(kind),
			"error", err,
		)
	case apperr.KindUnauthorized:
		h.metrics.RecordRejection(apperr.Reason(err))
	}
	writeJSON(w, apperr.HTTPStatus(kind), errorResponse{Error: apperr.Message(err)})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched so
// that validation can report the missing fields.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
	return false
}

// currentUser returns the account ProtectRoute attached to the request.
func currentUser(r *http.Request) *models.User {
	return middleware.UserFrom(r.Context())
}
