package analyses

import (
	"context"

	"jobbuddy-backend/internal/shared/apperr"
)

var (
	ErrNotFound  = apperr.NotFound("analysis not found")
	ErrForbidden = apperr.Authorization("analysis belongs to another user")
)

// Repo persists analyses. ListByUser returns newest first.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, id string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
	CountByResume(ctx context.Context, resumeID string) (int, error)
}
