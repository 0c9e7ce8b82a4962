package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationLike      NotificationType = "like"
	NotificationWatchlist NotificationType = "watchlist"
)

type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	From        primitive.ObjectID `bson:"from" json:"from"`
	To          primitive.ObjectID `bson:"to" json:"to"`
	Type        NotificationType   `bson:"type" json:"type"`
	Description string             `bson:"description" json:"description"`
	Read        bool               `bson:"read" json:"read"`
}

// Describe renders the human-readable text for a notification of type t
// sent by username.
func Describe(t NotificationType, username string) string {
	switch t {
	case NotificationLike:
		return fmt.Sprintf("%s liked your post.", username)
	case NotificationWatchlist:
		return fmt.Sprintf("%s added you to their watchlist.", username)
	default:
		return ""
	}
}

// NotificationSender is the populated "from" field.
type NotificationSender struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	ProfileImg string             `json:"profileImg"`
}

type NotificationView struct {
	ID          primitive.ObjectID  `json:"_id"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	From        *NotificationSender `json:"from"`
	To          primitive.ObjectID  `json:"to"`
	Type        NotificationType    `json:"type"`
	Description string              `json:"description"`
	Read        bool                `json:"read"`
}
