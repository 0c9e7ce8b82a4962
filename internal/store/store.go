// Package store declares the persistence contracts the services depend on.
// Backends live in the mongostore and memstore subpackages.
//
// Lookups that find nothing return an apperr NotFound error; uniqueness
// violations return an apperr Conflict error. Every other failure is an
// apperr Internal error.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
)

// Conflict messages shared by every backend so callers see the same text
// whether the duplicate was caught by a pre-check or by a unique index.
const (
	MsgUsernameTaken = "Username is already taken"
	MsgEmailTaken    = "Email is already taken"
)

// AccountStore owns identity records. Returned users always carry the
// password hash; callers strip it with User.Public before responding.
type AccountStore interface {
	FindByHandle(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	AddToWatchlist(ctx context.Context, id, target primitive.ObjectID) (int, error)
	RemoveFromWatchlist(ctx context.Context, id, target primitive.ObjectID) (int, error)
}

type PostStore interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// List returns posts newest first. A nil authors slice means every post;
	// an empty one means none.
	List(ctx context.Context, authors []primitive.ObjectID) ([]*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Post, error)
	Like(ctx context.Context, id, userID primitive.ObjectID) error
	Unlike(ctx context.Context, id, userID primitive.ObjectID) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListFor(ctx context.Context, to primitive.ObjectID) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, to primitive.ObjectID) error
	DeleteAllFor(ctx context.Context, to primitive.ObjectID) error
}

type QuoteStore interface {
	Create(ctx context.Context, q *models.Quote) (*models.Quote, error)
	// Random returns one quote chosen uniformly, or NotFound when empty.
	Random(ctx context.Context) (*models.Quote, error)
	InsertMany(ctx context.Context, qs []*models.Quote) (int, error)
	DeleteAll(ctx context.Context) error
}

// LoginAuditor records login attempts. Failures are reported but never block
// a login.
type LoginAuditor interface {
	Record(ctx context.Context, e models.LoginEvent) error
}

// Stores bundles one backend's repositories.
type Stores struct {
	Accounts      AccountStore
	Posts         PostStore
	Notifications NotificationStore
	Quotes        QuoteStore
}

// NopAuditor discards login events.
type NopAuditor struct{}

func (NopAuditor) Record(context.Context, models.LoginEvent) error { return nil }
