package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodPartner is a restaurant or vendor account allowed to publish food reels.
type FoodPartner struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Phone        string             `bson:"phone" json:"phone"`
	Address      string             `bson:"address" json:"address"`
	ContactName  string             `bson:"contactName" json:"contactName"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type FoodPartnerPublic struct {
	ID    primitive.ObjectID `json:"_id"`
	Email string             `json:"email"`
	Name  string             `json:"name"`
}

func (p FoodPartner) Public() FoodPartnerPublic {
	return FoodPartnerPublic{ID: p.ID, Email: p.Email, Name: p.Name}
}

// FoodPartnerProfile is the partner page: profile fields plus every reel.
type FoodPartnerProfile struct {
	FoodPartner
	FoodItems []Food `json:"foodItems"`
}
