package resumes

import (
	"context"

	"jobbuddy-backend/internal/shared/apperr"
)

var (
	ErrNotFound  = apperr.NotFound("resume not found")
	ErrForbidden = apperr.Authorization("resume belongs to another user")
	ErrInUse     = apperr.Constraint("resume is referenced by saved analyses", nil)
)

// Repo persists resumes. ListByUser returns newest first.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, id string) (Resume, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
	Update(ctx context.Context, resume Resume) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
}
