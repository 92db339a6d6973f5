package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a consumer account that watches, likes and saves food reels.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserPublic is the projection returned by auth endpoints.
type UserPublic struct {
	ID       primitive.ObjectID `json:"_id"`
	Email    string             `json:"email"`
	FullName string             `json:"fullName"`
}

func (u User) Public() UserPublic {
	return UserPublic{ID: u.ID, Email: u.Email, FullName: u.FullName}
}
