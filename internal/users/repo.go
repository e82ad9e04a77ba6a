package users

import (
	"context"

	"jobbuddy-backend/internal/shared/apperr"
)

var (
	ErrNotFound      = apperr.NotFound("user not found")
	ErrUsernameTaken = apperr.Constraint("username already taken", nil)
)

// Repo persists users. Username lookups are case-insensitive.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	UpdateInstructions(ctx context.Context, userID, instructions string) error
	Delete(ctx context.Context, userID string) error
}
