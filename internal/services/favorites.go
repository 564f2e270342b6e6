package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"favorites/internal/database"
	"favorites/internal/models"
)

type UserLookup interface {
	UserExists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type FavoriteStore interface {
	ListFavorites(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error)
	UpsertFavorite(ctx context.Context, userID primitive.ObjectID, placeID string, meta models.FavoriteMeta) (*models.Favorite, error)
	DeleteFavorite(ctx context.Context, userID primitive.ObjectID, placeID string) error
}

// Favorites manages the places a user has saved. Every operation first
// checks that the owning user exists.
type Favorites struct {
	users     UserLookup
	favorites FavoriteStore
}

func NewFavorites(users UserLookup, favorites FavoriteStore) *Favorites {
	return &Favorites{users: users, favorites: favorites}
}

// EnsureUserExists parses rawID as an ObjectID and checks the user is stored.
func (s *Favorites) EnsureUserExists(ctx context.Context, rawID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(rawID))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidUserID
	}

	exists, err := s.users.UserExists(ctx, id)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "check user")
	}
	if !exists {
		return primitive.NilObjectID, ErrUserNotFound
	}
	return id, nil
}

// List returns the user's favorites, newest first.
func (s *Favorites) List(ctx context.Context, rawUserID string) ([]models.Favorite, error) {
	userID, err := s.EnsureUserExists(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	items, err := s.favorites.ListFavorites(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list favorites")
	}
	return items, nil
}

// Upsert creates the (user, placeID) favorite or replaces its metadata.
// Fields missing from meta end up absent on the stored record.
func (s *Favorites) Upsert(ctx context.Context, rawUserID, placeID string, meta models.FavoriteMeta) (*models.Favorite, error) {
	userID, err := s.EnsureUserExists(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	fav, err := s.favorites.UpsertFavorite(ctx, userID, placeID, meta)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateFavorite
		}
		return nil, errors.Wrap(err, "upsert favorite")
	}
	return fav, nil
}

// Delete removes the favorite if present. A missing favorite is not an error.
func (s *Favorites) Delete(ctx context.Context, rawUserID, placeID string) error {
	userID, err := s.EnsureUserExists(ctx, rawUserID)
	if err != nil {
		return err
	}

	if err := s.favorites.DeleteFavorite(ctx, userID, placeID); err != nil {
		return errors.Wrap(err, "delete favorite")
	}
	return nil
}
