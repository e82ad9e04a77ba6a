package resumes

import "time"

// Resume is a named block of resume text owned by one user. SourceKey and
// SourceMime are set when the text was extracted from an uploaded file.
type Resume struct {
	ID         string
	UserID     string
	Name       string
	Content    string
	SourceKey  string
	SourceMime string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Update carries the fields a caller may change. Nil fields are kept.
type Update struct {
	Name    *string
	Content *string
}
