package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like and Save are join documents; their existence is the relation.
// (user, food) is unique per collection.
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Food      primitive.ObjectID `bson:"food" json:"food"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Save struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Food      primitive.ObjectID `bson:"food" json:"food"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// SavedFood is a Save expanded with the referenced Food.
type SavedFood struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Food      Food               `bson:"food" json:"food"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
