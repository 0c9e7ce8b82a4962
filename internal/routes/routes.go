package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/watchlist-backend/internal/config"
	"github.com/AnshRaj112/watchlist-backend/internal/handlers"
	"github.com/AnshRaj112/watchlist-backend/internal/metrics"
	"github.com/AnshRaj112/watchlist-backend/internal/middleware"
)

type Options struct {
	Handler *handlers.Handler
	Auth    middleware.Authenticator
	Config  *config.Config
	Metrics *metrics.Metrics
	Log     *slog.Logger

	// Limiter backs the fixed-window limiter on every /api route. Nil
	// disables it.
	Limiter middleware.HitCounter
}

// NewRouter builds the full HTTP surface: ops endpoints plus the /api tree.
func NewRouter(o Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(o.Log, o.Metrics))
	r.Use(middleware.CORS(o.Config.AllowedOrigins))

	// Health check and metrics (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", o.Metrics.Handler())

	r.Group(func(r chi.Router) {
		// Production: SecurityHeaders → GlobalRateLimit (no host check; no CDN/proxy)
		if o.Config.IsProduction() {
			for _, mw := range middleware.ProductionSecurity() {
				r.Use(mw)
			}
		}
		if o.Limiter != nil {
			r.Use(middleware.RateLimit(o.Limiter, middleware.RateLimitMaxRequests, middleware.RateLimitWindow, o.Log))
		}
		SetupRoutes(r, o)
	})

	return r
}

func SetupRoutes(r chi.Router, o Options) {
	h := o.Handler
	protect := middleware.ProtectRoute(o.Auth, o.Metrics, o.Log)

	r.Route("/api/auth", func(r chi.Router) {
		credentials := r
		if o.Config.IsProduction() {
			credentials = r.With(middleware.AuthRateLimit())
		}
		credentials.Post("/signup", h.Signup)
		credentials.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(protect).Get("/me", h.Me)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(protect)
		r.Get("/profile/{username}", h.GetProfile)
		r.Post("/watchlist/{id}", h.ToggleWatchlist)
		r.Get("/watchlist/{username}", h.GetWatchlist)
		r.Get("/search", h.SearchUsers)
		r.Post("/update", h.UpdateUser)
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(protect)
		r.Get("/all", h.GetAllPosts)
		r.Get("/watchlist", h.GetWatchlistPosts)
		r.Get("/user/{username}", h.GetUserPosts)
		r.Post("/create", h.CreatePost)
		r.Post("/like/{id}", h.LikeUnlikePost)
		r.Post("/comment/{id}", h.CommentOnPost)
		r.Delete("/{id}", h.DeletePost)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		// The stream authenticates itself so that ?token= works for browsers.
		r.Get("/stream", h.NotificationStream)

		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Get("/", h.GetNotifications)
			r.Delete("/", h.DeleteNotifications)
		})
	})

	r.Route("/api/quotes", func(r chi.Router) {
		r.Use(protect)
		r.Get("/", h.GetRandomQuote)
		r.Post("/addQuote", h.AddQuote)
	})
}
