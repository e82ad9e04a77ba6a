package resumes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"jobbuddy-backend/internal/shared/storage/db"
)

const pgForeignKeyViolation = "23503"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, name, content, source_key, source_mime, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Name,
		resume.Content,
		resume.SourceKey,
		resume.SourceMime,
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

const selectResume = `
SELECT id, user_id, name, content, source_key, source_mime, created_at, updated_at
FROM resumes
`

func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	resume, err := scanResume(r.DB.QueryRowContext(ctx, selectResume+`WHERE id = $1 LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	const query = selectResume + `WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, resume Resume) error {
	const query = `
UPDATE resumes SET name = $2, content = $3, updated_at = $4
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, resume.ID, resume.Name, resume.Content, resume.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrInUse
		}
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	return r.DeleteByUserTx(ctx, r.DB, userID)
}

// DeleteByUserTx deletes every resume of userID through exec.
func (r *PGRepo) DeleteByUserTx(ctx context.Context, exec db.Execer, userID string) (int, error) {
	res, err := exec.ExecContext(ctx, `DELETE FROM resumes WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var resume Resume
	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Name,
		&resume.Content,
		&resume.SourceKey,
		&resume.SourceMime,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	return resume, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
