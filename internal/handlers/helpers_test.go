package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AnshRaj112/watchlist-backend/internal/config"
	"github.com/AnshRaj112/watchlist-backend/internal/handlers"
	"github.com/AnshRaj112/watchlist-backend/internal/logging"
	"github.com/AnshRaj112/watchlist-backend/internal/metrics"
	"github.com/AnshRaj112/watchlist-backend/internal/routes"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
	"github.com/AnshRaj112/watchlist-backend/internal/store/memstore"
)

type fakeMedia struct {
	mu        sync.Mutex
	fail      bool
	uploads   int
	destroyed []string
}

func (m *fakeMedia) Upload(context.Context, string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", "", errors.New("media host unavailable")
	}
	m.uploads++
	id := fmt.Sprintf("img-%d", m.uploads)
	return "https://media.example/" + id, id, nil
}

func (m *fakeMedia) Destroy(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

type testServer struct {
	router  http.Handler
	stores  store.Stores
	media   *fakeMedia
	metrics *metrics.Metrics
	auth    *services.AuthService
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:     "test",
		StoreBackend:    config.StoreMemory,
		JWTSecret:       "handler-test-secret-handler-test-secret",
		TokenTTL:        15 * 24 * time.Hour,
		CookieName:      "jwt",
		BcryptCost:      bcrypt.MinCost,
		HashConcurrency: 2,
		AllowedOrigins:  []string{"http://localhost:3000"},
		MaxBodyBytes:    64 << 10,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig()
	log := logging.Discard()

	s := &testServer{
		stores:  memstore.New(),
		media:   &fakeMedia{},
		metrics: metrics.New(),
	}
	creds := services.NewCredentialManager(cfg)
	s.auth = services.NewAuthService(s.stores.Accounts, creds, services.NewTokenService(cfg), nil, log)
	notifications := services.NewNotificationService(s.stores.Notifications, s.stores.Accounts, services.NewLocalNotifier(), log)

	h := handlers.New(handlers.Deps{
		Auth:           s.auth,
		Users:          services.NewUserService(s.stores.Accounts, creds, s.media, notifications, log),
		Posts:          services.NewPostService(s.stores.Posts, s.stores.Accounts, s.media, notifications, log),
		Notifications:  notifications,
		Quotes:         services.NewQuoteService(s.stores.Quotes),
		Metrics:        s.metrics,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})
	s.router = routes.NewRouter(routes.Options{
		Handler: h,
		Auth:    s.auth,
		Config:  cfg,
		Metrics: s.metrics,
		Log:     log,
	})
	return s
}

// do sends a JSON request; token, when set, goes in the Authorization header.
func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type account struct {
	ID    string
	Token string
}

// signup registers username with password "secret1".
func (s *testServer) signup(t *testing.T, username string) account {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": "User " + username,
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	return account{ID: body["_id"].(string), Token: body["token"].(string)}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
