package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
)

type NotificationService struct {
	notes    store.NotificationStore
	accounts store.AccountStore
	notifier Notifier
	log      *slog.Logger
}

func NewNotificationService(notes store.NotificationStore, accounts store.AccountStore, notifier Notifier, log *slog.Logger) *NotificationService {
	return &NotificationService{notes: notes, accounts: accounts, notifier: notifier, log: log}
}

// Notify stores a notification from sender to recipient and pushes it to any
// live connection the recipient holds. Push failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, from *models.User, to primitive.ObjectID, t models.NotificationType) error {
	n, err := s.notes.Create(ctx, &models.Notification{
		From:        from.ID,
		To:          to,
		Type:        t,
		Description: models.Describe(t, from.Username),
	})
	if err != nil {
		return err
	}

	view := toNotificationView(n, &models.NotificationSender{
		ID:         from.ID,
		Username:   from.Username,
		ProfileImg: from.ProfileImg,
	})
	if err := s.notifier.Publish(ctx, &view); err != nil {
		s.log.WarnContext(ctx, "failed to publish notification", "to", to.Hex(), "error", err)
	}
	return nil
}

// List returns the caller's notifications newest first with senders
// resolved, then marks them all read.
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID) ([]models.NotificationView, error) {
	list, err := s.notes.ListFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	seen := make(map[primitive.ObjectID]bool)
	for _, n := range list {
		if !seen[n.From] {
			seen[n.From] = true
			ids = append(ids, n.From)
		}
	}
	senders, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.NotificationSender, len(senders))
	for _, u := range senders {
		byID[u.ID] = &models.NotificationSender{ID: u.ID, Username: u.Username, ProfileImg: u.ProfileImg}
	}

	views := make([]models.NotificationView, 0, len(list))
	for _, n := range list {
		v := toNotificationView(n, byID[n.From])
		if sender := byID[n.From]; sender != nil {
			v.Description = models.Describe(n.Type, sender.Username)
		}
		views = append(views, v)
	}

	if err := s.notes.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID primitive.ObjectID) error {
	return s.notes.DeleteAllFor(ctx, userID)
}

// Subscribe opens a live feed of notifications addressed to userID.
func (s *NotificationService) Subscribe(ctx context.Context, userID primitive.ObjectID) (<-chan []byte, func(), error) {
	return s.notifier.Subscribe(ctx, userID)
}

func toNotificationView(n *models.Notification, from *models.NotificationSender) models.NotificationView {
	return models.NotificationView{
		ID:          n.ID,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		From:        from,
		To:          n.To,
		Type:        n.Type,
		Description: n.Description,
		Read:        n.Read,
	}
}
