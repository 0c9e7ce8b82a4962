// Package memstore is an in-process backend used by tests and by
// STORE_BACKEND=memory for local runs without MongoDB.
package memstore

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
)

// New returns a fresh set of empty repositories.
func New() store.Stores {
	return store.Stores{
		Accounts:      NewAccounts(),
		Posts:         NewPosts(),
		Notifications: NewNotifications(),
		Quotes:        NewQuotes(),
	}
}

// --- accounts ---

type Accounts struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewAccounts() *Accounts {
	return &Accounts{users: make(map[primitive.ObjectID]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.Watchlist = append([]primitive.ObjectID{}, u.Watchlist...)
	return &out
}

func (s *Accounts) FindByHandle(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (s *Accounts) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (s *Accounts) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return cloneUser(u), nil
}

func (s *Accounts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (s *Accounts) Search(_ context.Context, query string, limit int) ([]*models.User, error) {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.FullName), q) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Accounts) conflictLocked(except primitive.ObjectID, username, email string) error {
	for id, u := range s.users {
		if id == except {
			continue
		}
		if username != "" && u.Username == username {
			return apperr.Conflict(store.MsgUsernameTaken)
		}
		if email != "" && u.Email == email {
			return apperr.Conflict(store.MsgEmailTaken)
		}
	}
	return nil
}

func (s *Accounts) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conflictLocked(primitive.NilObjectID, u.Username, u.Email); err != nil {
		return nil, err
	}
	stored := cloneUser(u)
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	if stored.Watchlist == nil {
		stored.Watchlist = []primitive.ObjectID{}
	}
	s.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (s *Accounts) Update(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	var username, email string
	if upd.Username != nil {
		username = *upd.Username
	}
	if upd.Email != nil {
		email = *upd.Email
	}
	if err := s.conflictLocked(id, username, email); err != nil {
		return nil, err
	}
	next := cloneUser(u)
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&next.Username, upd.Username)
	set(&next.FullName, upd.FullName)
	set(&next.Email, upd.Email)
	set(&next.Password, upd.Password)
	set(&next.Bio, upd.Bio)
	set(&next.Link, upd.Link)
	set(&next.ProfileImg, upd.ProfileImg)
	set(&next.ProfileImgID, upd.ProfileImgID)
	set(&next.CoverImg, upd.CoverImg)
	set(&next.CoverImgID, upd.CoverImgID)
	next.UpdatedAt = time.Now().UTC()
	s.users[id] = next
	return cloneUser(next), nil
}

func (s *Accounts) AddToWatchlist(_ context.Context, id, target primitive.ObjectID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, apperr.NotFound("User not found")
	}
	if !u.InWatchlist(target) {
		u.Watchlist = append(u.Watchlist, target)
	}
	return len(u.Watchlist), nil
}

func (s *Accounts) RemoveFromWatchlist(_ context.Context, id, target primitive.ObjectID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, apperr.NotFound("User not found")
	}
	kept := u.Watchlist[:0]
	for _, w := range u.Watchlist {
		if w != target {
			kept = append(kept, w)
		}
	}
	u.Watchlist = kept
	return len(u.Watchlist), nil
}

// --- posts ---

type Posts struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]*models.Post
	// order records insertion sequence; it breaks createdAt ties in List.
	order map[primitive.ObjectID]int64
	seq   int64
}

func NewPosts() *Posts {
	return &Posts{
		posts: make(map[primitive.ObjectID]*models.Post),
		order: make(map[primitive.ObjectID]int64),
	}
}

func clonePost(p *models.Post) *models.Post {
	out := *p
	out.Likes = append([]primitive.ObjectID{}, p.Likes...)
	out.Comments = append([]models.Comment{}, p.Comments...)
	return &out
}

func (s *Posts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := clonePost(p)
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.seq++
	s.posts[stored.ID] = stored
	s.order[stored.ID] = s.seq
	return clonePost(stored), nil
}

func (s *Posts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post not found")
	}
	return clonePost(p), nil
}

func (s *Posts) List(_ context.Context, authors []primitive.ObjectID) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var allowed map[primitive.ObjectID]bool
	if authors != nil {
		allowed = make(map[primitive.ObjectID]bool, len(authors))
		for _, a := range authors {
			allowed[a] = true
		}
	}
	out := make([]*models.Post, 0)
	for _, p := range s.posts {
		if allowed != nil && !allowed[p.User] {
			continue
		}
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

func (s *Posts) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return apperr.NotFound("Post not found")
	}
	delete(s.posts, id)
	delete(s.order, id)
	return nil
}

func (s *Posts) AddComment(_ context.Context, id primitive.ObjectID, c models.Comment) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post not found")
	}
	p.Comments = append(p.Comments, c)
	p.UpdatedAt = time.Now().UTC()
	return clonePost(p), nil
}

func (s *Posts) Like(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return apperr.NotFound("Post not found")
	}
	if !p.LikedBy(userID) {
		p.Likes = append(p.Likes, userID)
	}
	return nil
}

func (s *Posts) Unlike(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return apperr.NotFound("Post not found")
	}
	kept := p.Likes[:0]
	for _, l := range p.Likes {
		if l != userID {
			kept = append(kept, l)
		}
	}
	p.Likes = kept
	return nil
}

// --- notifications ---

type Notifications struct {
	mu    sync.RWMutex
	items []*models.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (s *Notifications) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *n
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.items = append(s.items, &stored)
	out := stored
	return &out, nil
}

func (s *Notifications) ListFor(_ context.Context, to primitive.ObjectID) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Notification, 0)
	// Newest first: later appends are newer.
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].To == to {
			n := *s.items[i]
			out = append(out, &n)
		}
	}
	return out, nil
}

func (s *Notifications) MarkAllRead(_ context.Context, to primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.To == to {
			n.Read = true
		}
	}
	return nil
}

func (s *Notifications) DeleteAllFor(_ context.Context, to primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, n := range s.items {
		if n.To != to {
			kept = append(kept, n)
		}
	}
	s.items = kept
	return nil
}

// --- quotes ---

type Quotes struct {
	mu     sync.RWMutex
	quotes []*models.Quote
}

func NewQuotes() *Quotes {
	return &Quotes{}
}

func (s *Quotes) Create(_ context.Context, q *models.Quote) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *q
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.quotes = append(s.quotes, &stored)
	out := stored
	return &out, nil
}

func (s *Quotes) Random(_ context.Context) (*models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.quotes) == 0 {
		return nil, apperr.NotFound("No quotes available.")
	}
	q := *s.quotes[rand.Intn(len(s.quotes))]
	return &q, nil
}

func (s *Quotes) InsertMany(ctx context.Context, qs []*models.Quote) (int, error) {
	for _, q := range qs {
		if _, err := s.Create(ctx, q); err != nil {
			return 0, err
		}
	}
	return len(qs), nil
}

func (s *Quotes) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = nil
	return nil
}
