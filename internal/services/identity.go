package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"favorites/internal/database"
	"favorites/internal/models"
)

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error)
	DeleteUserByToken(ctx context.Context, token string) (*models.User, error)
}

// FavoriteRemover drops every favorite owned by a user.
type FavoriteRemover interface {
	DeleteFavoritesByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// ProfileUpdate carries the fields present in a profile update request.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// Identity owns user registration, credential checks and token lookups.
type Identity struct {
	users     UserStore
	favorites FavoriteRemover
}

func NewIdentity(users UserStore, favorites FavoriteRemover) *Identity {
	return &Identity{users: users, favorites: favorites}
}

func (s *Identity) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingFields
	}

	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	_, err = s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, database.ErrNotFound):
		return nil, errors.Wrap(err, "register")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), registerHashCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	token, err := generateToken()
	if err != nil {
		return nil, errors.Wrap(err, "generate token")
	}

	now := time.Now()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Token:        token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, errors.Wrap(err, "register")
	}

	log.Println("[USER] [INFO] user registered:", email)
	return user, nil
}

// Authenticate reports ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *Identity) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingFields
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "authenticate")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Identity) ResolveByToken(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	user, err := s.users.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnknownToken
		}
		return nil, errors.Wrap(err, "resolve token")
	}
	return user, nil
}

// UpdateProfile applies only the fields present in req. An empty password is
// ignored; a new one is hashed at updateHashCost.
func (s *Identity) UpdateProfile(ctx context.Context, token string, req ProfileUpdate) (*models.User, error) {
	user, err := s.ResolveByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var update models.UserUpdate
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, ErrMissingFields
		}
		update.Username = &username
	}
	if req.Email != nil {
		email, err := NormalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		update.Email = &email
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), updateHashCost)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}

	if update.Empty() {
		return user, nil
	}

	updated, err := s.users.UpdateUser(ctx, user.ID, update)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, database.ErrDuplicate):
		return nil, ErrConflict
	case errors.Is(err, database.ErrNotFound):
		return nil, ErrUnknownToken
	default:
		return nil, errors.Wrap(err, "update profile")
	}
}

// DeleteAccount removes the user owning token together with its favorites.
func (s *Identity) DeleteAccount(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	user, err := s.users.DeleteUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, "delete account")
	}

	if s.favorites != nil {
		deleted, err := s.favorites.DeleteFavoritesByUser(ctx, user.ID)
		if err != nil {
			log.Printf("[USER] [ERROR] favorites cleanup failed for %s: %v", user.ID.Hex(), err)
		} else {
			log.Printf("[USER] [INFO] user %s deleted with %d favorites", user.ID.Hex(), deleted)
		}
	}
	return nil
}
