package analyses

import (
	"strings"
	"time"

	"jobbuddy-backend/internal/llm"
)

const excerptLen = 160

// AnalysisResponse is the full outward representation of an analysis.
type AnalysisResponse struct {
	AnalysisID     string        `json:"analysisId"`
	ResumeID       string        `json:"resumeId"`
	ResumeName     string        `json:"resumeName"`
	JobPostingID   string        `json:"jobPostingId"`
	JobText        string        `json:"jobText"`
	JobSource      string        `json:"jobSource,omitempty"`
	Questions      string        `json:"questions,omitempty"`
	FitScore       int           `json:"fitScore"`
	Suggestions    []string      `json:"suggestions"`
	StrategicNotes string        `json:"strategicNotes"`
	Sections       []llm.Section `json:"sections"`
	RawText        string        `json:"rawText"`
	Provider       string        `json:"provider"`
	Model          string        `json:"model"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// SummaryResponse is the history list entry.
type SummaryResponse struct {
	AnalysisID string    `json:"analysisId"`
	ResumeID   string    `json:"resumeId"`
	ResumeName string    `json:"resumeName"`
	FitScore   int       `json:"fitScore"`
	JobExcerpt string    `json:"jobExcerpt"`
	JobSource  string    `json:"jobSource,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toResponse(a Analysis) AnalysisResponse {
	suggestions := a.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	sections := a.Sections
	if sections == nil {
		sections = []llm.Section{}
	}
	return AnalysisResponse{
		AnalysisID:     a.ID,
		ResumeID:       a.ResumeID,
		ResumeName:     a.ResumeName,
		JobPostingID:   a.JobPostingID,
		JobText:        a.JobText,
		JobSource:      a.JobSource,
		Questions:      a.Questions,
		FitScore:       a.FitScore,
		Suggestions:    suggestions,
		StrategicNotes: a.StrategicNotes,
		Sections:       sections,
		RawText:        a.RawText,
		Provider:       a.Provider,
		Model:          a.Model,
		CreatedAt:      a.CreatedAt,
	}
}

func toSummary(a Analysis) SummaryResponse {
	return SummaryResponse{
		AnalysisID: a.ID,
		ResumeID:   a.ResumeID,
		ResumeName: a.ResumeName,
		FitScore:   a.FitScore,
		JobExcerpt: excerpt(a.JobText, excerptLen),
		JobSource:  a.JobSource,
		CreatedAt:  a.CreatedAt,
	}
}

func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
