package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/AnshRaj112/watchlist-backend/internal/config"
	"github.com/AnshRaj112/watchlist-backend/internal/logging"
	"github.com/AnshRaj112/watchlist-backend/internal/metrics"
	"github.com/AnshRaj112/watchlist-backend/internal/middleware"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
	"github.com/AnshRaj112/watchlist-backend/internal/store/memstore"
)

type gate struct {
	auth    *services.AuthService
	tokens  *services.TokenService
	metrics *metrics.Metrics
	handler http.Handler
	user    *models.User
}

func newGate(t *testing.T) *gate {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:       "middleware-test-secret-middleware-test",
		TokenTTL:        time.Hour,
		CookieName:      "jwt",
		BcryptCost:      bcrypt.MinCost,
		HashConcurrency: 1,
	}
	stores := memstore.New()
	tokens := services.NewTokenService(cfg)
	auth := services.NewAuthService(stores.Accounts, services.NewCredentialManager(cfg), tokens, nil, logging.Discard())

	sess, err := auth.Signup(context.Background(), services.SignupInput{
		FullName: "A B", Username: "ab", Email: "a@b.com", Password: "secret1",
	})
	require.NoError(t, err)

	m := metrics.New()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := middleware.UserFrom(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]string{"username": u.Username, "password": u.Password})
	})
	return &gate{
		auth:    auth,
		tokens:  tokens,
		metrics: m,
		handler: middleware.ProtectRoute(auth, m, logging.Discard())(next),
		user:    sess.User,
	}
}

func (g *gate) do(r *http.Request) (*httptest.ResponseRecorder, map[string]string) {
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, r)
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestProtectRouteAcceptsBearerAndCookie(t *testing.T) {
	g := newGate(t)
	tok, _, err := g.tokens.Issue(g.user.ID)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	rec, body := g.do(r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ab", body["username"])
	assert.Empty(t, body["password"])

	r = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: "jwt", Value: tok})
	rec, body = g.do(r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ab", body["username"])
}

func TestProtectRouteRejections(t *testing.T) {
	g := newGate(t)

	issued := time.Now().Add(-2 * time.Hour)
	g.tokens.SetClock(func() time.Time { return issued })
	expired, _, err := g.tokens.Issue(g.user.ID)
	require.NoError(t, err)
	g.tokens.SetClock(time.Now)

	orphan, _, err := g.tokens.Issue(primitive.NewObjectID())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		msg    string
		reason string
	}{
		{"no token", "", services.MsgNoToken, services.ReasonNoToken},
		{"malformed", "Bearer abc.def.ghi", services.MsgInvalidToken, services.ReasonInvalidToken},
		{"expired", "Bearer " + expired, services.MsgExpiredToken, services.ReasonExpiredToken},
		{"deleted account", "Bearer " + orphan, services.MsgUserNotFound, services.ReasonUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec, body := g.do(r)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.msg, body["error"])
			assert.Equal(t, 1.0, testutil.ToFloat64(g.metrics.AuthRejections.WithLabelValues(tt.reason)))
		})
	}
}

func TestUserFromEmptyContext(t *testing.T) {
	assert.Nil(t, middleware.UserFrom(context.Background()))
	u := &models.User{Username: "x"}
	assert.Same(t, u, middleware.UserFrom(middleware.WithUser(context.Background(), u)))
}
