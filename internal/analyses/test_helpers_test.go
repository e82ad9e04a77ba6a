package analyses

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobbuddy-backend/internal/llm"
	"jobbuddy-backend/internal/resumes"
)

type stubLLM struct {
	mu      sync.Mutex
	text    string
	err     error
	delay   time.Duration
	calls   int
	lastReq llm.Request
	// onCall runs inside Complete, while the request is in flight.
	onCall func()
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	s.calls++
	s.lastReq = req
	onCall := s.onCall
	s.mu.Unlock()
	if onCall != nil {
		onCall()
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Text: s.text, Model: "stub-model"}, nil
}

type stubInstructions map[string]string

func (s stubInstructions) Instructions(ctx context.Context, userID string) (string, error) {
	return s[userID], nil
}

type fixture struct {
	svc     *Service
	repo    *MemoryRepo
	resumes *resumes.MemoryRepo
	llm     *stubLLM
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		repo:    NewMemoryRepo(),
		resumes: resumes.NewMemoryRepo(),
		llm:     &stubLLM{text: `{"fitScore": 82, "suggestions": ["Lead with Go"], "strategicNotes": "Apply.", "sections": [{"title": "Initial Assessment", "body": "Good fit."}]}`},
	}
	f.svc = &Service{
		Repo:         f.repo,
		Resumes:      f.resumes,
		Instructions: stubInstructions{},
		LLM:          f.llm,
		Timeout:      time.Second,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	}
	return f
}

func (f *fixture) addResume(t *testing.T, id, owner, name, content string) {
	t.Helper()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	err := f.resumes.Create(context.Background(), resumes.Resume{
		ID:        id,
		UserID:    owner,
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create resume: %v", err)
	}
}
