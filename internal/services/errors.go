package services

import "github.com/pkg/errors"

var (
	ErrMissingFields      = errors.New("missing or empty fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("user not found or wrong password")
	ErrMissingToken       = errors.New("missing token")
	ErrUnknownToken       = errors.New("unknown user")
	ErrConflict           = errors.New("email or username already in use")

	ErrInvalidUserID     = errors.New("invalid userId")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateFavorite = errors.New("duplicate favorite")
)
