package services

import (
	"context"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
	"github.com/AnshRaj112/watchlist-backend/pkg/utils"
)

// SearchLimit caps user search results.
const SearchLimit = 20

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// WatchlistResult describes the outcome of a watchlist toggle.
type WatchlistResult struct {
	Message      string `json:"message"`
	Action       string `json:"action"`
	UpdatedCount int    `json:"updatedCount"`
}

// UpdateProfileInput mirrors the update form. Empty strings leave a field
// unchanged. Images are data URIs or bare base64.
type UpdateProfileInput struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
	ProfileImg      string `json:"profileImg"`
	CoverImg        string `json:"coverImg"`
}

type UserService struct {
	accounts      store.AccountStore
	creds         *CredentialManager
	media         MediaStore
	notifications *NotificationService
	log           *slog.Logger
}

func NewUserService(accounts store.AccountStore, creds *CredentialManager, media MediaStore, notifications *NotificationService, log *slog.Logger) *UserService {
	if media == nil {
		media = DisabledMedia()
	}
	return &UserService{
		accounts:      accounts,
		creds:         creds,
		media:         media,
		notifications: notifications,
		log:           log,
	}
}

// Profile looks up a user by handle.
func (s *UserService) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.accounts.FindByHandle(ctx, utils.NormalizeUsername(username))
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// ToggleWatchlist adds targetID to the caller's watchlist, or removes it if
// already present. Adding notifies the target.
func (s *UserService) ToggleWatchlist(ctx context.Context, me *models.User, targetID string) (*WatchlistResult, error) {
	id, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, apperr.NotFound("User to modify not found")
	}
	if id == me.ID {
		return nil, apperr.Validation("You can't add yourself to the watchlist")
	}

	target, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("User to modify not found")
		}
		return nil, err
	}

	current, err := s.accounts.FindByID(ctx, me.ID)
	if err != nil {
		return nil, err
	}

	if current.InWatchlist(target.ID) {
		n, err := s.accounts.RemoveFromWatchlist(ctx, me.ID, target.ID)
		if err != nil {
			return nil, err
		}
		return &WatchlistResult{Message: "Removed from watchlist", Action: ActionRemoved, UpdatedCount: n}, nil
	}

	n, err := s.accounts.AddToWatchlist(ctx, me.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.Notify(ctx, current, target.ID, models.NotificationWatchlist); err != nil {
		s.log.WarnContext(ctx, "failed to create watchlist notification", "from", me.ID.Hex(), "to", target.ID.Hex(), "error", err)
	}
	return &WatchlistResult{Message: "Added to watchlist", Action: ActionAdded, UpdatedCount: n}, nil
}

// Watchlist lists the accounts username is watching, in the order added.
func (s *UserService) Watchlist(ctx context.Context, username string) ([]models.UserCard, error) {
	user, err := s.accounts.FindByHandle(ctx, utils.NormalizeUsername(username))
	if err != nil {
		return nil, err
	}

	watched, err := s.accounts.FindByIDs(ctx, user.Watchlist)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(watched))
	for _, u := range watched {
		byID[u.ID] = u
	}

	cards := make([]models.UserCard, 0, len(user.Watchlist))
	for _, id := range user.Watchlist {
		if u, ok := byID[id]; ok {
			cards = append(cards, u.Card())
		}
	}
	return cards, nil
}

// Search matches query case-insensitively against handles and display names.
func (s *UserService) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Search query is required")
	}

	users, err := s.accounts.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// Update applies a profile edit for the caller. Changing the password needs
// both the current and the new one.
func (s *UserService) Update(ctx context.Context, me *models.User, in UpdateProfileInput) (*models.User, error) {
	user, err := s.accounts.FindByID(ctx, me.ID)
	if err != nil {
		return nil, err
	}

	var upd models.UserUpdate

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, apperr.Validation("Please provide new and current password")
	}
	if in.CurrentPassword != "" {
		if !s.creds.Verify(ctx, in.CurrentPassword, user.Password) {
			return nil, apperr.Validation("Current password is incorrect")
		}
		if err := utils.ValidatePassword(in.NewPassword); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		hash, err := s.creds.Hash(ctx, in.NewPassword)
		if err != nil {
			return nil, err
		}
		upd.Password = &hash
	}

	if username := utils.NormalizeUsername(in.Username); username != "" && username != user.Username {
		if err := utils.ValidateUsername(username); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if err := s.ensureUnclaimed(ctx, s.accounts.FindByHandle, username, user.ID, store.MsgUsernameTaken); err != nil {
			return nil, err
		}
		upd.Username = &username
	}

	if email := utils.NormalizeEmail(in.Email); email != "" && email != user.Email {
		if err := utils.ValidateEmail(email); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if err := s.ensureUnclaimed(ctx, s.accounts.FindByEmail, email, user.ID, store.MsgEmailTaken); err != nil {
			return nil, err
		}
		upd.Email = &email
	}

	if fullName := strings.TrimSpace(in.FullName); fullName != "" {
		if err := utils.ValidateFullName(fullName); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		upd.FullName = &fullName
	}
	if in.Bio != "" {
		upd.Bio = &in.Bio
	}
	if in.Link != "" {
		upd.Link = &in.Link
	}

	var replaced []string
	if in.ProfileImg != "" {
		url, id, err := s.upload(ctx, in.ProfileImg)
		if err != nil {
			return nil, err
		}
		upd.ProfileImg, upd.ProfileImgID = &url, &id
		replaced = append(replaced, user.ProfileImgID)
	}
	if in.CoverImg != "" {
		url, id, err := s.upload(ctx, in.CoverImg)
		if err != nil {
			return nil, err
		}
		upd.CoverImg, upd.CoverImgID = &url, &id
		replaced = append(replaced, user.CoverImgID)
	}

	updated, err := s.accounts.Update(ctx, user.ID, upd)
	if err != nil {
		return nil, err
	}

	for _, old := range replaced {
		if old == "" {
			continue
		}
		if err := s.media.Destroy(ctx, old); err != nil {
			s.log.WarnContext(ctx, "failed to destroy replaced image", "public_id", old, "error", err)
		}
	}
	return updated.Public(), nil
}

type lookupFunc func(ctx context.Context, key string) (*models.User, error)

// ensureUnclaimed fails with msg if key already belongs to someone other than self.
func (s *UserService) ensureUnclaimed(ctx context.Context, find lookupFunc, key string, self primitive.ObjectID, msg string) error {
	other, err := find(ctx, key)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if other.ID != self {
		return apperr.Conflict(msg)
	}
	return nil
}

func (s *UserService) upload(ctx context.Context, img string) (string, string, error) {
	url, id, err := s.media.Upload(ctx, toDataURI(img))
	if err != nil {
		s.log.ErrorContext(ctx, "image upload failed", "error", err)
		return "", "", apperr.Upstream(err, "Image upload failed")
	}
	return url, id, nil
}
