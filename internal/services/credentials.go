package services

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/config"
)

// CredentialManager hashes and verifies account passwords with bcrypt.
//
// bcrypt is CPU bound, so at most HashConcurrency computations run at once;
// the rest wait on the semaphore (or their request context) instead of
// crowding out the goroutines serving unrelated requests.
type CredentialManager struct {
	cost int
	sem  *semaphore.Weighted

	dummyOnce sync.Once
	dummyHash []byte
}

func NewCredentialManager(cfg *config.Config) *CredentialManager {
	n := cfg.HashConcurrency
	if n < 1 {
		n = 1
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialManager{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(n)),
	}
}

// Hash returns a salted bcrypt artifact for plaintext. Length policy is the
// caller's job; see utils.ValidatePassword.
func (m *CredentialManager) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return "", apperr.Internal(err, "hash password")
	}
	defer m.sem.Release(1)

	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), m.cost)
	if err != nil {
		return "", apperr.Internal(err, "hash password")
	}
	return string(h), nil
}

// Verify reports whether plaintext matches hash. A wrong password, a corrupt
// hash and a cancelled context all answer false.
func (m *CredentialManager) Verify(ctx context.Context, plaintext, hash string) bool {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer m.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// VerifyMissing burns one comparison against a throwaway hash so a login for
// an unknown username costs the same as one with a wrong password.
func (m *CredentialManager) VerifyMissing(ctx context.Context, plaintext string) {
	m.dummyOnce.Do(func() {
		m.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("watchlist-placeholder"), m.cost)
	})
	m.Verify(ctx, plaintext, string(m.dummyHash))
}
