package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account able to own favorites.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username      string             `bson:"username" json:"username"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"passwordHash" json:"-"`
	Token         string             `bson:"token,omitempty" json:"token,omitempty"`
	ResetToken    string             `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExp *time.Time         `bson:"resetTokenExp,omitempty" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the subset of a user returned by signup, signin and token lookups.
type PublicUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Token:    u.Token,
	}
}

// UserUpdate holds the profile fields to overwrite. Nil fields are left untouched.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil
}
