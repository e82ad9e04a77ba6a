package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"jobbuddy-backend/internal/llm"
	"jobbuddy-backend/internal/resumes"
	"jobbuddy-backend/internal/shared/apperr"
	"jobbuddy-backend/internal/shared/metrics"
	"jobbuddy-backend/internal/shared/telemetry"
)

const (
	DefaultMaxJobChars = 20000
	MaxQuestionsChars  = 5000
	DefaultTimeout     = 120 * time.Second

	defaultPageSize = 20
	maxPageSize     = 100
)

// ResumeReader loads resumes by id.
type ResumeReader interface {
	GetByID(ctx context.Context, id string) (resumes.Resume, error)
}

// InstructionsSource returns a user's analysis instructions, empty for the default.
type InstructionsSource interface {
	Instructions(ctx context.Context, userID string) (string, error)
}

// Service runs analyses and serves the history.
type Service struct {
	Repo         Repo
	Resumes      ResumeReader
	Instructions InstructionsSource
	LLM          llm.Client
	Model        string
	MaxTokens    int
	Timeout      time.Duration
	MaxJobChars  int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

func (s *Service) maxJobChars() int {
	if s.MaxJobChars > 0 {
		return s.MaxJobChars
	}
	return DefaultMaxJobChars
}

// Analyze asks the provider how well the resume fits the job and stores the
// result. Nothing is stored unless the provider call and parsing both succeed.
func (s *Service) Analyze(ctx context.Context, userID, resumeID string, job JobInput) (Analysis, error) {
	if s == nil || s.Repo == nil || s.Resumes == nil || s.LLM == nil {
		return Analysis{}, errors.New("analyses service not configured")
	}
	job.Text = strings.TrimSpace(job.Text)
	job.Source = strings.TrimSpace(job.Source)
	job.Questions = strings.TrimSpace(job.Questions)
	if err := s.validate(userID, resumeID, job); err != nil {
		return Analysis{}, err
	}

	resume, err := s.Resumes.GetByID(ctx, resumeID)
	if err != nil {
		return Analysis{}, err
	}
	if resume.UserID != userID {
		return Analysis{}, resumes.ErrForbidden
	}

	var instructions string
	if s.Instructions != nil {
		instructions, err = s.Instructions.Instructions(ctx, userID)
		if err != nil {
			return Analysis{}, fmt.Errorf("load instructions: %w", err)
		}
	}

	req := llm.BuildRequest(llm.PromptInput{
		Instructions: instructions,
		ResumeText:   resume.Content,
		JobText:      job.Text,
		JobSource:    job.Source,
		Questions:    job.Questions,
		MaxTokens:    s.MaxTokens,
	})
	promptHash := req.Hash()
	provider := s.LLM.Name()

	metrics.IncAnalysisStarted()
	began := time.Now()
	logFields := map[string]any{
		"user_id":     userID,
		"resumeId":    resumeID,
		"provider":    provider,
		"prompt_hash": promptHash,
		"job_chars":   utf8.RuneCountInString(job.Text),
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout())
	start := time.Now()
	resp, err := s.LLM.Complete(callCtx, req)
	latency := time.Since(start)
	cancel()
	metrics.ObserveProviderLatencyMs(float64(latency.Milliseconds()))
	logFields["latency_ms"] = latency.Milliseconds()
	if err != nil {
		perr := &apperr.ProviderError{
			Provider: provider,
			Timeout:  ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)),
			Err:      err,
		}
		reason := "provider_error"
		if perr.Timeout {
			reason = "provider_timeout"
		}
		metrics.IncAnalysisFailed(reason)
		logFields["reason"] = reason
		logFields["error"] = err
		telemetry.Error("analysis.failed", logFields)
		return Analysis{}, perr
	}

	parsed, err := llm.ParseAnalysis(resp.Text)
	if err != nil {
		metrics.IncAnalysisFailed("parse_error")
		logFields["reason"] = "parse_error"
		logFields["error"] = err
		logFields["raw_chars"] = len(resp.Text)
		telemetry.Error("analysis.failed", logFields)
		return Analysis{}, err
	}

	model := resp.Model
	if model == "" {
		model = s.Model
	}
	analysis := Analysis{
		ID:             uuid.NewString(),
		UserID:         userID,
		ResumeID:       resume.ID,
		ResumeName:     resume.Name,
		JobPostingID:   uuid.NewString(),
		JobText:        job.Text,
		JobSource:      job.Source,
		Questions:      job.Questions,
		FitScore:       parsed.FitScore,
		Suggestions:    parsed.Suggestions,
		StrategicNotes: parsed.StrategicNotes,
		Sections:       parsed.Sections,
		RawText:        resp.Text,
		Provider:       provider,
		Model:          model,
		PromptHash:     promptHash,
		CreatedAt:      s.now(),
	}
	// The resume may have been deleted while the provider was working.
	_, err = s.Resumes.GetByID(ctx, resume.ID)
	if err == nil {
		err = s.Repo.Create(ctx, analysis)
	}
	if err != nil {
		reason := "storage_error"
		if errors.Is(err, resumes.ErrNotFound) {
			reason = "resume_missing"
		}
		metrics.IncAnalysisFailed(reason)
		logFields["reason"] = reason
		logFields["error"] = err
		telemetry.Error("analysis.failed", logFields)
		return Analysis{}, fmt.Errorf("store analysis: %w", err)
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(began).Milliseconds()))
	logFields["analysisId"] = analysis.ID
	logFields["fit_score"] = analysis.FitScore
	logFields["model"] = model
	logFields["input_tokens"] = resp.InputTokens
	logFields["output_tokens"] = resp.OutputTokens
	telemetry.Info("analysis.completed", logFields)
	return analysis, nil
}

func (s *Service) validate(userID, resumeID string, job JobInput) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.Validation("user id is required")
	}
	if strings.TrimSpace(resumeID) == "" {
		return apperr.Validation("resume id is required")
	}
	if job.Text == "" {
		return apperr.Validation("job text is required")
	}
	if n := utf8.RuneCountInString(job.Text); n > s.maxJobChars() {
		return apperr.Validationf("job text must be at most %d characters", s.maxJobChars())
	}
	if utf8.RuneCountInString(job.Questions) > MaxQuestionsChars {
		return apperr.Validationf("questions must be at most %d characters", MaxQuestionsChars)
	}
	return nil
}

// History returns the user's analyses, newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user id is required")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Get returns one analysis if userID owns it.
func (s *Service) Get(ctx context.Context, userID, id string) (Analysis, error) {
	if strings.TrimSpace(id) == "" {
		return Analysis{}, apperr.Validation("analysis id is required")
	}
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrForbidden
	}
	return a, nil
}

// Delete removes one owned analysis.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
