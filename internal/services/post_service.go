package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
	"github.com/AnshRaj112/watchlist-backend/pkg/utils"
)

const (
	MsgPostLiked   = "Post liked successfully"
	MsgPostUnliked = "Post unliked successfully"
)

type CreatePostInput struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

type PostService struct {
	posts         store.PostStore
	accounts      store.AccountStore
	media         MediaStore
	notifications *NotificationService
	log           *slog.Logger
}

func NewPostService(posts store.PostStore, accounts store.AccountStore, media MediaStore, notifications *NotificationService, log *slog.Logger) *PostService {
	if media == nil {
		media = DisabledMedia()
	}
	return &PostService{
		posts:         posts,
		accounts:      accounts,
		media:         media,
		notifications: notifications,
		log:           log,
	}
}

func (s *PostService) All(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.posts.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, posts)
}

// WatchlistFeed returns posts by the accounts the caller is watching.
func (s *PostService) WatchlistFeed(ctx context.Context, me *models.User) ([]models.PostView, error) {
	user, err := s.accounts.FindByID(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	authors := append([]primitive.ObjectID{}, user.Watchlist...)
	posts, err := s.posts.List(ctx, authors)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, posts)
}

func (s *PostService) ByUser(ctx context.Context, username string) ([]models.PostView, error) {
	user, err := s.accounts.FindByHandle(ctx, utils.NormalizeUsername(username))
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx, []primitive.ObjectID{user.ID})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, posts)
}

func (s *PostService) Create(ctx context.Context, me *models.User, in CreatePostInput) (*models.Post, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.Img == "" {
		return nil, apperr.Validation("Text or image is required")
	}

	post := &models.Post{User: me.ID, Text: text}
	if in.Img != "" {
		url, id, err := s.media.Upload(ctx, toDataURI(in.Img))
		if err != nil {
			s.log.ErrorContext(ctx, "image upload failed", "user_id", me.ID.Hex(), "error", err)
			return nil, apperr.Upstream(err, "Image upload failed")
		}
		post.Img, post.ImgID = url, id
	}

	return s.posts.Create(ctx, post)
}

// Delete removes a post owned by the caller along with its image.
func (s *PostService) Delete(ctx context.Context, me *models.User, postID string) error {
	post, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if post.User != me.ID {
		return apperr.Forbidden("You are not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	if post.ImgID != "" {
		if err := s.media.Destroy(ctx, post.ImgID); err != nil {
			s.log.WarnContext(ctx, "failed to destroy post image", "post_id", post.ID.Hex(), "error", err)
		}
	}
	return nil
}

func (s *PostService) Comment(ctx context.Context, me *models.User, postID, text string) (*models.PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Text field is required")
	}
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}

	updated, err := s.posts.AddComment(ctx, post.ID, models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		User:      me.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	views, err := s.populate(ctx, []*models.Post{updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ToggleLike likes or unlikes a post and returns the confirmation message.
// Liking someone else's post notifies its author.
func (s *PostService) ToggleLike(ctx context.Context, me *models.User, postID string) (string, error) {
	post, err := s.find(ctx, postID)
	if err != nil {
		return "", err
	}

	if post.LikedBy(me.ID) {
		if err := s.posts.Unlike(ctx, post.ID, me.ID); err != nil {
			return "", err
		}
		return MsgPostUnliked, nil
	}

	if err := s.posts.Like(ctx, post.ID, me.ID); err != nil {
		return "", err
	}
	if post.User != me.ID {
		if err := s.notifications.Notify(ctx, me, post.User, models.NotificationLike); err != nil {
			s.log.WarnContext(ctx, "failed to create like notification", "post_id", post.ID.Hex(), "error", err)
		}
	}
	return MsgPostLiked, nil
}

func (s *PostService) find(ctx context.Context, postID string) (*models.Post, error) {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, apperr.NotFound("Post not found")
	}
	return s.posts.FindByID(ctx, id)
}

// populate resolves post and comment authors with one batched lookup.
func (s *PostService) populate(ctx context.Context, posts []*models.Post) ([]models.PostView, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		add(p.User)
		for _, c := range p.Comments {
			add(c.User)
		}
	}

	users, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u.Public()
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		comments := make([]models.CommentView, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, models.CommentView{
				ID:        c.ID,
				Text:      c.Text,
				User:      byID[c.User],
				CreatedAt: c.CreatedAt,
			})
		}
		likes := append([]primitive.ObjectID{}, p.Likes...)
		views = append(views, models.PostView{
			ID:        p.ID,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
			User:      byID[p.User],
			Text:      p.Text,
			Img:       p.Img,
			Likes:     likes,
			Comments:  comments,
		})
	}
	return views, nil
}
