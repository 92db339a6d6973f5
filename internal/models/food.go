package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Food is a short video item owned by exactly one FoodPartner.
// LikeCount and SavesCount mirror the number of Like and Save documents
// referencing the item; they only change inside the toggle transactions.
type Food struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Video       string             `bson:"video" json:"video"`
	FoodPartner primitive.ObjectID `bson:"foodPartner" json:"foodPartner"`
	LikeCount   int64              `bson:"likeCount" json:"likeCount"`
	SavesCount  int64              `bson:"savesCount" json:"savesCount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
