package resumes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"jobbuddy-backend/internal/extract"
	"jobbuddy-backend/internal/shared/apperr"
	"jobbuddy-backend/internal/shared/storage/object"
	"jobbuddy-backend/internal/shared/telemetry"
)

const (
	MaxNameLen     = 200
	MaxContentLen  = 200000
	MaxUploadBytes = 10 << 20

	defaultPageSize = 50
	maxPageSize     = 100
)

// ReferenceCounter reports how many analyses point at a resume.
type ReferenceCounter interface {
	CountByResume(ctx context.Context, resumeID string) (int, error)
}

// Service contains business logic for resumes.
type Service struct {
	Repo  Repo
	Store object.Store
	Refs  ReferenceCounter
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create stores resume text under userID.
func (s *Service) Create(ctx context.Context, userID, name, content string) (Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, apperr.Validation("user id is required")
	}
	name, content, err := validate(name, content)
	if err != nil {
		return Resume{}, err
	}
	now := s.now()
	resume := Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, fmt.Errorf("create resume: %w", err)
	}
	return resume, nil
}

// Upload saves the original file, extracts its text and stores it as a resume.
// An empty name defaults to the file name.
func (s *Service) Upload(ctx context.Context, userID, name, fileName string, data []byte) (Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, apperr.Validation("user id is required")
	}
	if strings.TrimSpace(fileName) == "" {
		return Resume{}, apperr.Validation("file name is required")
	}
	if len(data) == 0 {
		return Resume{}, apperr.Validation("file is empty")
	}
	if len(data) > MaxUploadBytes {
		return Resume{}, apperr.Validationf("file must be at most %d bytes", MaxUploadBytes)
	}
	if s.Store == nil {
		return Resume{}, errors.New("object store not configured")
	}
	if strings.TrimSpace(name) == "" {
		name = fileName
	}

	mimeType := object.DetectMimeType(fileName, data)
	text, err := extract.Text(ctx, data, mimeType, fileName)
	if err != nil {
		return Resume{}, err
	}
	name, text, err = validate(name, text)
	if err != nil {
		return Resume{}, err
	}

	obj, err := s.Store.Put(ctx, userID, fileName, data)
	if err != nil {
		return Resume{}, fmt.Errorf("store upload: %w", err)
	}

	now := s.now()
	resume := Resume{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Content:    text,
		SourceKey:  obj.Key,
		SourceMime: obj.MimeType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		s.removeObject(ctx, obj.Key)
		return Resume{}, fmt.Errorf("create resume: %w", err)
	}
	telemetry.Info("resume.uploaded", map[string]any{
		"user_id":    userID,
		"resumeId":   resume.ID,
		"mime_type":  obj.MimeType,
		"size_bytes": obj.Size,
		"chars":      utf8.RuneCountInString(text),
	})
	return resume, nil
}

// Get returns the resume if userID owns it.
func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, apperr.Validation("resume id is required")
	}
	resume, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if resume.UserID != userID {
		return Resume{}, ErrForbidden
	}
	return resume, nil
}

// List returns userID's resumes, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user id is required")
	}
	limit, offset = clampPage(limit, offset)
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Update changes the name and/or content of an owned resume.
func (s *Service) Update(ctx context.Context, userID, id string, upd Update) (Resume, error) {
	resume, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	name, content := resume.Name, resume.Content
	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.Content != nil {
		content = *upd.Content
	}
	name, content, err = validate(name, content)
	if err != nil {
		return Resume{}, err
	}
	resume.Name = name
	resume.Content = content
	resume.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, resume); err != nil {
		return Resume{}, fmt.Errorf("update resume: %w", err)
	}
	return resume, nil
}

// Delete removes an owned resume. Resumes referenced by analyses are kept.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	resume, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if s.Refs != nil {
		n, err := s.Refs.CountByResume(ctx, id)
		if err != nil {
			return fmt.Errorf("count analyses: %w", err)
		}
		if n > 0 {
			return ErrInUse
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if resume.SourceKey != "" {
		s.removeObject(ctx, resume.SourceKey)
	}
	return nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if s.Store == nil {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("resume.object_delete_failed", map[string]any{"key": key, "error": err})
	}
}

func validate(name, content string) (string, string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameLen {
		return "", "", apperr.Validationf("name must be 1 to %d characters", MaxNameLen)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", apperr.Validation("resume content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return "", "", apperr.Validationf("resume content must be at most %d characters", MaxContentLen)
	}
	return name, content, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
