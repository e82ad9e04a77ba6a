package analyses

import (
	"context"
	"sort"
	"sync"

	"jobbuddy-backend/internal/llm"
)

// MemoryRepo implements Repo in process memory.
type MemoryRepo struct {
	mu       sync.RWMutex
	analyses map[string]Analysis
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{analyses: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[analysis.ID] = cloneAnalysis(analysis)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[id]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return cloneAnalysis(a), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Analysis, 0)
	for _, a := range r.analyses {
		if a.UserID == userID {
			out = append(out, cloneAnalysis(a))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Analysis{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.analyses[id]; !ok {
		return ErrNotFound
	}
	delete(r.analyses, id)
	return nil
}

func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, a := range r.analyses {
		if a.UserID == userID {
			delete(r.analyses, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) CountByResume(ctx context.Context, resumeID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.analyses {
		if a.ResumeID == resumeID {
			n++
		}
	}
	return n, nil
}

func cloneAnalysis(a Analysis) Analysis {
	a.Suggestions = append([]string(nil), a.Suggestions...)
	a.Sections = append([]llm.Section(nil), a.Sections...)
	return a
}
