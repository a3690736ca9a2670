package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the stored user document. The password hash is excluded from JSON
// and only loaded for credential verification.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // stored lowercase
	PasswordHash string             `bson:"password" json:"-"`
	Image        *string            `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Author is the display projection joined onto notes and comments.
type Author struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Image *string            `bson:"image,omitempty" json:"image,omitempty"`
}

// Identity is the authenticated caller as carried by the session token.
type Identity struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Image *string            `json:"image,omitempty"`
}

// Identity returns the session identity for a loaded user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}
