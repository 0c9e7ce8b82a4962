package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Quote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	Text      string             `bson:"text" json:"text" yaml:"text"`
	Author    string             `bson:"author" json:"author" yaml:"author"`
}
