package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jobbuddy-backend/internal/analyses"
	"jobbuddy-backend/internal/resumes"
	"jobbuddy-backend/internal/shared/apperr"
	"jobbuddy-backend/internal/shared/storage/db"
	"jobbuddy-backend/internal/shared/storage/object"
	"jobbuddy-backend/internal/shared/telemetry"
	"jobbuddy-backend/internal/users"
)

const listPageSize = 100

// Service removes a user together with everything they own.
type Service struct {
	Users    users.Repo
	Resumes  resumes.Repo
	Analyses analyses.Repo
	Store    object.Store
}

// DeleteResult reports how many records were removed.
type DeleteResult struct {
	DeletedResumes  int `json:"deletedResumes"`
	DeletedAnalyses int `json:"deletedAnalyses"`
}

func NewService(userRepo users.Repo, resumeRepo resumes.Repo, analysisRepo analyses.Repo, store object.Store) *Service {
	return &Service{Users: userRepo, Resumes: resumeRepo, Analyses: analysisRepo, Store: store}
}

// DeleteAccount removes analyses, resumes and the user, in that order.
// Stored upload originals are removed afterwards on a best-effort basis.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, apperr.Validation("user id is required")
	}
	if s.Users == nil || s.Resumes == nil || s.Analyses == nil {
		return DeleteResult{}, errors.New("account service not configured")
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return DeleteResult{}, err
	}

	keys, err := s.sourceKeys(ctx, userID)
	if err != nil {
		return DeleteResult{}, err
	}

	var result DeleteResult
	if database, ok := s.sharedDB(); ok {
		result, err = s.deleteWithTx(ctx, database, userID)
	} else {
		result, err = s.deleteEach(ctx, userID)
	}
	if err != nil {
		return DeleteResult{}, err
	}

	s.removeObjects(ctx, userID, keys)
	telemetry.Info("account.deleted", map[string]any{
		"user_id":          userID,
		"deleted_resumes":  result.DeletedResumes,
		"deleted_analyses": result.DeletedAnalyses,
	})
	return result, nil
}

// sharedDB returns the database when every repo is backed by the same Postgres pool.
func (s *Service) sharedDB() (*sql.DB, bool) {
	userPG, ok := s.Users.(*users.PGRepo)
	if !ok || userPG == nil || userPG.DB == nil {
		return nil, false
	}
	resumePG, ok := s.Resumes.(*resumes.PGRepo)
	if !ok || resumePG == nil || resumePG.DB != userPG.DB {
		return nil, false
	}
	analysisPG, ok := s.Analyses.(*analyses.PGRepo)
	if !ok || analysisPG == nil || analysisPG.DB != userPG.DB {
		return nil, false
	}
	return userPG.DB, true
}

func (s *Service) deleteWithTx(ctx context.Context, database *sql.DB, userID string) (DeleteResult, error) {
	var result DeleteResult
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		result.DeletedAnalyses, err = s.Analyses.(*analyses.PGRepo).DeleteByUserTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("delete analyses: %w", err)
		}
		result.DeletedResumes, err = s.Resumes.(*resumes.PGRepo).DeleteByUserTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("delete resumes: %w", err)
		}
		if err := s.Users.(*users.PGRepo).DeleteTx(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}

func (s *Service) deleteEach(ctx context.Context, userID string) (DeleteResult, error) {
	var result DeleteResult
	var err error
	if result.DeletedAnalyses, err = s.Analyses.DeleteByUser(ctx, userID); err != nil {
		return DeleteResult{}, fmt.Errorf("delete analyses: %w", err)
	}
	if result.DeletedResumes, err = s.Resumes.DeleteByUser(ctx, userID); err != nil {
		return DeleteResult{}, fmt.Errorf("delete resumes: %w", err)
	}
	if err := s.Users.Delete(ctx, userID); err != nil {
		return DeleteResult{}, fmt.Errorf("delete user: %w", err)
	}
	return result, nil
}

func (s *Service) sourceKeys(ctx context.Context, userID string) ([]string, error) {
	if s.Store == nil {
		return nil, nil
	}
	var keys []string
	for offset := 0; ; offset += listPageSize {
		page, err := s.Resumes.ListByUser(ctx, userID, listPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list resumes: %w", err)
		}
		for _, r := range page {
			if r.SourceKey != "" {
				keys = append(keys, r.SourceKey)
			}
		}
		if len(page) < listPageSize {
			return keys, nil
		}
	}
}

func (s *Service) removeObjects(ctx context.Context, userID string, keys []string) {
	for _, key := range keys {
		if err := s.Store.Delete(ctx, key); err != nil {
			telemetry.Warn("account.object_delete_failed", map[string]any{
				"user_id": userID,
				"key":     key,
				"error":   err,
			})
		}
	}
}
