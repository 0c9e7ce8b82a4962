package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/watchlist-backend/internal/logging"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
	"github.com/AnshRaj112/watchlist-backend/internal/store/memstore"
)

type fakeMedia struct {
	mu        sync.Mutex
	fail      bool
	uploads   []string
	destroyed []string
}

func (m *fakeMedia) Upload(_ context.Context, dataURI string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", "", errors.New("media host unavailable")
	}
	m.uploads = append(m.uploads, dataURI)
	id := fmt.Sprintf("img-%d", len(m.uploads))
	return "https://media.example/" + id, id, nil
}

func (m *fakeMedia) Destroy(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	err    error
	events []models.LoginEvent
}

func (a *recordingAuditor) Record(_ context.Context, e models.LoginEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return a.err
}

type testEnv struct {
	stores        store.Stores
	media         *fakeMedia
	audit         *recordingAuditor
	hub           *LocalNotifier
	auth          *AuthService
	users         *UserService
	posts         *PostService
	notifications *NotificationService
	quotes        *QuoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	log := logging.Discard()

	env := &testEnv{
		stores: memstore.New(),
		media:  &fakeMedia{},
		audit:  &recordingAuditor{},
		hub:    NewLocalNotifier(),
	}
	creds := NewCredentialManager(cfg)
	tokens := NewTokenService(cfg)

	env.notifications = NewNotificationService(env.stores.Notifications, env.stores.Accounts, env.hub, log)
	env.auth = NewAuthService(env.stores.Accounts, creds, tokens, env.audit, log)
	env.users = NewUserService(env.stores.Accounts, creds, env.media, env.notifications, log)
	env.posts = NewPostService(env.stores.Posts, env.stores.Accounts, env.media, env.notifications, log)
	env.quotes = NewQuoteService(env.stores.Quotes)
	return env
}

// signup registers username with a derived email and the password "secret1".
func (e *testEnv) signup(t *testing.T, username string) *models.User {
	t.Helper()
	sess, err := e.auth.Signup(context.Background(), SignupInput{
		FullName: "User " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return sess.User
}
