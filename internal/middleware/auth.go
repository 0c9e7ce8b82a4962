package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/metrics"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// Authenticator turns a request's token into the account it was issued for.
type Authenticator interface {
	TokenFromRequest(r *http.Request) string
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user, or nil outside ProtectRoute.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// ProtectRoute rejects requests without a valid token for a live account and
// stores that account in the request context for the handlers behind it.
func ProtectRoute(auth Authenticator, m *metrics.Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), auth.TokenFromRequest(r))
			if err != nil {
				kind := apperr.KindOf(err)
				if kind == apperr.KindUnauthorized {
					m.RecordRejection(apperr.Reason(err))
				} else {
					log.ErrorContext(r.Context(), "auth lookup failed", "path", r.URL.Path, "error", err)
				}
				writeError(w, apperr.HTTPStatus(kind), apperr.Message(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
