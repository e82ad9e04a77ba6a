package analyses

import (
	"time"

	"jobbuddy-backend/internal/llm"
)

// Analysis is one stored fit analysis of a resume against a job posting.
// It is never modified after creation.
type Analysis struct {
	ID             string
	UserID         string
	ResumeID       string
	ResumeName     string
	JobPostingID   string
	JobText        string
	JobSource      string
	Questions      string
	FitScore       int
	Suggestions    []string
	StrategicNotes string
	Sections       []llm.Section
	RawText        string
	Provider       string
	Model          string
	PromptHash     string
	CreatedAt      time.Time
}

// JobInput is the job posting submitted with an analyze request.
type JobInput struct {
	Text      string
	Source    string
	Questions string
}
