package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"jobbuddy-backend/internal/shared/storage/db"
)

const pgUniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, username, password_hash, instructions, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Instructions,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

const selectUser = `
SELECT id, username, password_hash, instructions, created_at, updated_at
FROM users
`

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, selectUser+`WHERE id = $1 LIMIT 1`, userID)
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.getOne(ctx, selectUser+`WHERE lower(username) = lower($1) LIMIT 1`, username)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (User, error) {
	var user User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Instructions,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) UpdateInstructions(ctx context.Context, userID, instructions string) error {
	const query = `
UPDATE users SET instructions = $2, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, instructions)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	return r.DeleteTx(ctx, r.DB, userID)
}

// DeleteTx deletes the user through exec so account deletion can share a transaction.
func (r *PGRepo) DeleteTx(ctx context.Context, exec db.Execer, userID string) error {
	res, err := exec.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
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
