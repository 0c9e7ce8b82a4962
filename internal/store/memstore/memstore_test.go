package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
)

func TestAccountsUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()

	u, err := s.Create(ctx, &models.User{Username: "ab", Email: "a@b.com", Password: "hash"})
	require.NoError(t, err)
	assert.False(t, u.ID.IsZero())
	assert.NotNil(t, u.Watchlist)

	_, err = s.Create(ctx, &models.User{Username: "ab", Email: "other@b.com"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.EqualError(t, err, store.MsgUsernameTaken)

	_, err = s.Create(ctx, &models.User{Username: "cd", Email: "a@b.com"})
	assert.EqualError(t, err, store.MsgEmailTaken)
}

func TestAccountsReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()
	u, err := s.Create(ctx, &models.User{Username: "ab", Email: "a@b.com"})
	require.NoError(t, err)

	u.Username = "mutated"
	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ab", got.Username)
}

func TestAccountsUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()
	a, _ := s.Create(ctx, &models.User{Username: "a", Email: "a@x.io"})
	_, _ = s.Create(ctx, &models.User{Username: "b", Email: "b@x.io"})

	bio := "hello"
	got, err := s.Update(ctx, a.ID, models.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, "a", got.Username)

	taken := "b"
	_, err = s.Update(ctx, a.ID, models.UserUpdate{Username: &taken})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	same := "a"
	_, err = s.Update(ctx, a.ID, models.UserUpdate{Username: &same})
	assert.NoError(t, err)

	_, err = s.Update(ctx, primitive.NewObjectID(), models.UserUpdate{Bio: &bio})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAccountsWatchlist(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()
	a, _ := s.Create(ctx, &models.User{Username: "a", Email: "a@x.io"})
	b, _ := s.Create(ctx, &models.User{Username: "b", Email: "b@x.io"})

	n, err := s.AddToWatchlist(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.AddToWatchlist(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.RemoveFromWatchlist(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAccountsSearch(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()
	_, _ = s.Create(ctx, &models.User{Username: "janedoe", FullName: "Jane Doe", Email: "j@x.io"})
	_, _ = s.Create(ctx, &models.User{Username: "bob", FullName: "Robert DOEson", Email: "b@x.io"})
	_, _ = s.Create(ctx, &models.User{Username: "carol", FullName: "Carol", Email: "c@x.io"})

	got, err := s.Search(ctx, "doe", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Search(ctx, "doe", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPostsListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := NewPosts()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	first, _ := s.Create(ctx, &models.Post{User: alice, Text: "first"})
	second, _ := s.Create(ctx, &models.Post{User: bob, Text: "second"})

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	onlyAlice, err := s.List(ctx, []primitive.ObjectID{alice})
	require.NoError(t, err)
	require.Len(t, onlyAlice, 1)
	assert.Equal(t, "first", onlyAlice[0].Text)

	none, err := s.List(ctx, []primitive.ObjectID{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostsSameTickOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewPosts()
	author := primitive.NewObjectID()

	var ids []primitive.ObjectID
	for i := 0; i < 50; i++ {
		p, err := s.Create(ctx, &models.Post{User: author, Text: "p"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	after := time.Now().UTC()

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, len(ids))
	for i, p := range all {
		assert.Equal(t, ids[len(ids)-1-i], p.ID, "position %d", i)
		assert.False(t, p.CreatedAt.After(after), "createdAt stays on the wall clock")
	}
}

func TestPostsLikes(t *testing.T) {
	ctx := context.Background()
	s := NewPosts()
	p, _ := s.Create(ctx, &models.Post{User: primitive.NewObjectID(), Text: "x"})
	liker := primitive.NewObjectID()

	require.NoError(t, s.Like(ctx, p.ID, liker))
	require.NoError(t, s.Like(ctx, p.ID, liker))
	got, _ := s.FindByID(ctx, p.ID)
	assert.Len(t, got.Likes, 1)

	require.NoError(t, s.Unlike(ctx, p.ID, liker))
	got, _ = s.FindByID(ctx, p.ID)
	assert.Empty(t, got.Likes)

	assert.True(t, apperr.Is(s.Like(ctx, primitive.NewObjectID(), liker), apperr.KindNotFound))
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	s := NewNotifications()
	to, other := primitive.NewObjectID(), primitive.NewObjectID()

	_, _ = s.Create(ctx, &models.Notification{To: to, Type: models.NotificationLike})
	_, _ = s.Create(ctx, &models.Notification{To: to, Type: models.NotificationWatchlist})
	_, _ = s.Create(ctx, &models.Notification{To: other, Type: models.NotificationLike})

	list, err := s.ListFor(ctx, to)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NotificationWatchlist, list[0].Type)

	require.NoError(t, s.MarkAllRead(ctx, to))
	list, _ = s.ListFor(ctx, to)
	for _, n := range list {
		assert.True(t, n.Read)
	}

	require.NoError(t, s.DeleteAllFor(ctx, to))
	list, _ = s.ListFor(ctx, to)
	assert.Empty(t, list)
	list, _ = s.ListFor(ctx, other)
	assert.Len(t, list, 1)
}

func TestQuotesRandom(t *testing.T) {
	ctx := context.Background()
	s := NewQuotes()

	_, err := s.Random(ctx)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	n, err := s.InsertMany(ctx, []*models.Quote{{Text: "a", Author: "x"}, {Text: "b", Author: "y"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	q, err := s.Random(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string{"a", "b"}, q.Text)

	require.NoError(t, s.DeleteAll(ctx))
	_, err = s.Random(ctx)
	assert.Error(t, err)
}
