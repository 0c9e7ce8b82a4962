package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
	Text      string               `bson:"text,omitempty" json:"text,omitempty"`
	Img       string               `bson:"img,omitempty" json:"img,omitempty"`
	ImgID     string               `bson:"imgId,omitempty" json:"-"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	Text      string             `json:"text"`
	User      *User              `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
}

// PostView is a post with the author and comment authors resolved, matching
// what clients render in feeds.
type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	User      *User                `json:"user"`
	Text      string               `json:"text,omitempty"`
	Img       string               `json:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
}
