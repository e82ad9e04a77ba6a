package resumes

import "time"

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ResumeID   string    `json:"resumeId"`
	Name       string    `json:"name"`
	Content    string    `json:"content,omitempty"`
	Chars      int       `json:"chars"`
	SourceMime string    `json:"sourceMime,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toResponse(r Resume, withContent bool) ResumeResponse {
	resp := ResumeResponse{
		ResumeID:   r.ID,
		Name:       r.Name,
		Chars:      len([]rune(r.Content)),
		SourceMime: r.SourceMime,
		UploadedAt: r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if withContent {
		resp.Content = r.Content
	}
	return resp
}
