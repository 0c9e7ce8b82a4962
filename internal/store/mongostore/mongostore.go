// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
)

const (
	usersCollection         = "users"
	postsCollection         = "posts"
	notificationsCollection = "notifications"
	quotesCollection        = "quotes"
)

// New binds every repository to db.
func New(db *mongo.Database) store.Stores {
	return store.Stores{
		Accounts:      &Accounts{col: db.Collection(usersCollection)},
		Posts:         &Posts{col: db.Collection(postsCollection)},
		Notifications: &Notifications{col: db.Collection(notificationsCollection)},
		Quotes:        &Quotes{col: db.Collection(quotesCollection)},
	}
}

// duplicateConflict turns a unique-index violation into the matching
// conflict message. The index name carries the field.
func duplicateConflict(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "email") {
		return apperr.Conflict(store.MsgEmailTaken)
	}
	return apperr.Conflict(store.MsgUsernameTaken)
}

// --- accounts ---

type Accounts struct {
	col *mongo.Collection
}

func (s *Accounts) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "find user")
	}
	return &u, nil
}

func (s *Accounts) FindByHandle(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *Accounts) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Accounts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Accounts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Internal(err, "find users")
	}
	defer cur.Close(ctx)

	users := make([]*models.User, 0, len(ids))
	if err := cur.All(ctx, &users); err != nil {
		return nil, apperr.Internal(err, "decode users")
	}
	return users, nil
}

func (s *Accounts) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"username": pattern},
		{"fullName": pattern},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal(err, "search users")
	}
	defer cur.Close(ctx)

	var users []*models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, apperr.Internal(err, "decode users")
	}
	return users, nil
}

func (s *Accounts) Create(ctx context.Context, u *models.User) (*models.User, error) {
	doc := *u
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if doc.Watchlist == nil {
		doc.Watchlist = []primitive.ObjectID{}
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if cErr := duplicateConflict(err); cErr != nil {
			return nil, cErr
		}
		return nil, apperr.Internal(err, "insert user")
	}
	return &doc, nil
}

func (s *Accounts) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	fields := map[string]*string{
		"username":     upd.Username,
		"fullName":     upd.FullName,
		"email":        upd.Email,
		"password":     upd.Password,
		"bio":          upd.Bio,
		"link":         upd.Link,
		"profileImg":   upd.ProfileImg,
		"profileImgId": upd.ProfileImgID,
		"coverImg":     upd.CoverImg,
		"coverImgId":   upd.CoverImgID,
	}
	for k, v := range fields {
		if v != nil {
			set[k] = *v
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		if cErr := duplicateConflict(err); cErr != nil {
			return nil, cErr
		}
		return nil, apperr.Internal(err, "update user")
	}
	return &u, nil
}

func (s *Accounts) updateWatchlist(ctx context.Context, id primitive.ObjectID, update bson.M) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"watchlist": 1})

	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, apperr.NotFound("User not found")
	}
	if err != nil {
		return 0, apperr.Internal(err, "update watchlist")
	}
	return len(u.Watchlist), nil
}

func (s *Accounts) AddToWatchlist(ctx context.Context, id, target primitive.ObjectID) (int, error) {
	return s.updateWatchlist(ctx, id, bson.M{"$addToSet": bson.M{"watchlist": target}})
}

func (s *Accounts) RemoveFromWatchlist(ctx context.Context, id, target primitive.ObjectID) (int, error) {
	return s.updateWatchlist(ctx, id, bson.M{"$pull": bson.M{"watchlist": target}})
}

// --- posts ---

type Posts struct {
	col *mongo.Collection
}

func (s *Posts) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	doc := *p
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if doc.Likes == nil {
		doc.Likes = []primitive.ObjectID{}
	}
	if doc.Comments == nil {
		doc.Comments = []models.Comment{}
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return nil, apperr.Internal(err, "insert post")
	}
	return &doc, nil
}

func (s *Posts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "find post")
	}
	return &p, nil
}

func (s *Posts) List(ctx context.Context, authors []primitive.ObjectID) ([]*models.Post, error) {
	filter := bson.M{}
	if authors != nil {
		if len(authors) == 0 {
			return []*models.Post{}, nil
		}
		filter["user"] = bson.M{"$in": authors}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal(err, "find posts")
	}
	defer cur.Close(ctx)

	posts := make([]*models.Post, 0)
	if err := cur.All(ctx, &posts); err != nil {
		return nil, apperr.Internal(err, "decode posts")
	}
	return posts, nil
}

func (s *Posts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Internal(err, "delete post")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Post not found")
	}
	return nil
}

func (s *Posts) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Post, error) {
	update := bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Post
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "comment on post")
	}
	return &p, nil
}

func (s *Posts) updateLikes(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return apperr.Internal(err, "update likes")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Post not found")
	}
	return nil
}

func (s *Posts) Like(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.updateLikes(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (s *Posts) Unlike(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.updateLikes(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

// --- notifications ---

type Notifications struct {
	col *mongo.Collection
}

func (s *Notifications) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	doc := *n
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return nil, apperr.Internal(err, "insert notification")
	}
	return &doc, nil
}

func (s *Notifications) ListFor(ctx context.Context, to primitive.ObjectID) ([]*models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"to": to}, opts)
	if err != nil {
		return nil, apperr.Internal(err, "find notifications")
	}
	defer cur.Close(ctx)

	list := make([]*models.Notification, 0)
	if err := cur.All(ctx, &list); err != nil {
		return nil, apperr.Internal(err, "decode notifications")
	}
	return list, nil
}

func (s *Notifications) MarkAllRead(ctx context.Context, to primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx, bson.M{"to": to, "read": false}, bson.M{
		"$set": bson.M{"read": true, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return apperr.Internal(err, "mark notifications read")
	}
	return nil
}

func (s *Notifications) DeleteAllFor(ctx context.Context, to primitive.ObjectID) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"to": to}); err != nil {
		return apperr.Internal(err, "delete notifications")
	}
	return nil
}

// --- quotes ---

type Quotes struct {
	col *mongo.Collection
}

func (s *Quotes) Create(ctx context.Context, q *models.Quote) (*models.Quote, error) {
	doc := *q
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return nil, apperr.Internal(err, "insert quote")
	}
	return &doc, nil
}

func (s *Quotes) Random(ctx context.Context) (*models.Quote, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Internal(err, "sample quote")
	}
	defer cur.Close(ctx)

	var quotes []models.Quote
	if err := cur.All(ctx, &quotes); err != nil {
		return nil, apperr.Internal(err, "decode quote")
	}
	if len(quotes) == 0 {
		return nil, apperr.NotFound("No quotes available.")
	}
	return &quotes[0], nil
}

func (s *Quotes) InsertMany(ctx context.Context, qs []*models.Quote) (int, error) {
	if len(qs) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(qs))
	for _, q := range qs {
		doc := *q
		if doc.ID.IsZero() {
			doc.ID = primitive.NewObjectID()
		}
		doc.CreatedAt, doc.UpdatedAt = now, now
		docs = append(docs, doc)
	}
	res, err := s.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, apperr.Internal(err, "insert quotes")
	}
	return len(res.InsertedIDs), nil
}

func (s *Quotes) DeleteAll(ctx context.Context) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{}); err != nil {
		return apperr.Internal(err, "delete quotes")
	}
	return nil
}
