package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"jobbuddy-backend/internal/llm"
	"jobbuddy-backend/internal/resumes"
	"jobbuddy-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, a Analysis) error {
	const query = `
INSERT INTO analyses (
	id, user_id, resume_id, resume_name, job_posting_id, job_text, job_source, questions,
	fit_score, suggestions, strategic_notes, sections, raw_text, provider, model, prompt_hash, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	suggestions, err := marshalJSONB(a.Suggestions, "[]")
	if err != nil {
		return err
	}
	sections, err := marshalJSONB(a.Sections, "[]")
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.ResumeID,
		a.ResumeName,
		a.JobPostingID,
		a.JobText,
		a.JobSource,
		a.Questions,
		a.FitScore,
		suggestions,
		a.StrategicNotes,
		sections,
		a.RawText,
		a.Provider,
		a.Model,
		a.PromptHash,
		a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return resumes.ErrNotFound
		}
		return err
	}
	return nil
}

const selectAnalysis = `
SELECT id, user_id, resume_id, resume_name, job_posting_id, job_text, job_source, questions,
       fit_score, suggestions, strategic_notes, sections, raw_text, provider, model, prompt_hash, created_at
FROM analyses
`

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, selectAnalysis+`WHERE id = $1 LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListByUser returns the user's analyses, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	const query = selectAnalysis + `WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	return r.DeleteByUserTx(ctx, r.DB, userID)
}

// DeleteByUserTx deletes every analysis of userID through exec.
func (r *PGRepo) DeleteByUserTx(ctx context.Context, exec db.Execer, userID string) (int, error) {
	res, err := exec.ExecContext(ctx, `DELETE FROM analyses WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *PGRepo) CountByResume(ctx context.Context, resumeID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM analyses WHERE resume_id = $1`, resumeID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var suggestions, sections []byte
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ResumeID,
		&a.ResumeName,
		&a.JobPostingID,
		&a.JobText,
		&a.JobSource,
		&a.Questions,
		&a.FitScore,
		&suggestions,
		&a.StrategicNotes,
		&sections,
		&a.RawText,
		&a.Provider,
		&a.Model,
		&a.PromptHash,
		&a.CreatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	a.Suggestions = []string{}
	if len(suggestions) > 0 {
		if err := json.Unmarshal(suggestions, &a.Suggestions); err != nil {
			return Analysis{}, fmt.Errorf("decode suggestions: %w", err)
		}
	}
	a.Sections = []llm.Section{}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &a.Sections); err != nil {
			return Analysis{}, fmt.Errorf("decode sections: %w", err)
		}
	}
	return a, nil
}

func marshalJSONB(value any, empty string) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if string(payload) == "null" {
		return []byte(empty), nil
	}
	return payload, nil
}
