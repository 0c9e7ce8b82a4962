package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Username string `bson:"username" json:"username"`
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // Never leaves the credential path

	Watchlist []primitive.ObjectID `bson:"watchlist" json:"watchlist"`

	ProfileImg   string `bson:"profileImg" json:"profileImg"`
	ProfileImgID string `bson:"profileImgId,omitempty" json:"-"`
	CoverImg     string `bson:"coverImg" json:"coverImg"`
	CoverImgID   string `bson:"coverImgId,omitempty" json:"-"`
	Bio          string `bson:"bio" json:"bio"`
	Link         string `bson:"link" json:"link"`
}

// Public returns a copy safe to hand to callers: the hash is cleared and the
// watchlist is never nil.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Password = ""
	out.Watchlist = append([]primitive.ObjectID{}, u.Watchlist...)
	return &out
}

// InWatchlist reports whether id is on the user's watchlist.
func (u *User) InWatchlist(id primitive.ObjectID) bool {
	for _, w := range u.Watchlist {
		if w == id {
			return true
		}
	}
	return false
}

// UserSummary is the reduced shape used inside posts, comments and watchlists.
type UserSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	FullName   string             `bson:"fullName" json:"fullName"`
	ProfileImg string             `bson:"profileImg" json:"profileImg"`
	Bio        string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Link       string             `bson:"link,omitempty" json:"link,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
		Bio:        u.Bio,
		Link:       u.Link,
	}
}

// UserUpdate holds the fields an update may change. Nil means unchanged.
type UserUpdate struct {
	Username     *string
	FullName     *string
	Email        *string
	Password     *string
	Bio          *string
	Link         *string
	ProfileImg   *string
	ProfileImgID *string
	CoverImg     *string
	CoverImgID   *string
}

// UserCard is the minimal shape listed on a watchlist page.
type UserCard struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	FullName   string             `json:"fullName"`
	ProfileImg string             `json:"profileImg"`
}

func (u *User) Card() UserCard {
	return UserCard{ID: u.ID, Username: u.Username, FullName: u.FullName, ProfileImg: u.ProfileImg}
}
