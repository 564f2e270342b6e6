package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FavoriteMeta is the descriptive metadata of an external place. Absent
// fields are stored as missing, never as zero values.
type FavoriteMeta struct {
	Name      *string  `bson:"name,omitempty" json:"name,omitempty"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Address   *string  `bson:"address,omitempty" json:"address,omitempty"`
	Type      *string  `bson:"type,omitempty" json:"type,omitempty"`
}

// HasLocation reports whether both coordinates are set.
func (m FavoriteMeta) HasLocation() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// Favorite is unique per (User, PlaceID).
type Favorite struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	PlaceID      string             `bson:"placeId" json:"placeId"`
	FavoriteMeta `bson:",inline"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
