package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "alice", "hash", "", now).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), User{ID: "u1", Username: "alice", PasswordHash: "hash", CreatedAt: now})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByUsernameIsCaseInsensitive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "instructions", "created_at", "updated_at"}).
		AddRow("u1", "alice", "hash", "custom", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(username) = lower($1)")).
		WithArgs("ALICE").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "ALICE")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.ID != "u1" || user.Instructions != "custom" {
		t.Fatalf("unexpected user %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET instructions")).
		WithArgs("missing", "x").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.UpdateInstructions(context.Background(), "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
