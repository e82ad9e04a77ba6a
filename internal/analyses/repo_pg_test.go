package analyses

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"jobbuddy-backend/internal/llm"
	"jobbuddy-backend/internal/resumes"
)

var analysisColumns = []string{
	"id", "user_id", "resume_id", "resume_name", "job_posting_id", "job_text", "job_source", "questions",
	"fit_score", "suggestions", "strategic_notes", "sections", "raw_text", "provider", "model", "prompt_hash", "created_at",
}

func TestPGRepoCreateEncodesJSONB(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analyses")).
		WithArgs("a1", "alice", "R1", "Backend", "jp1", "Senior Engineer", "", "",
			82, []byte(`["Lead with Go"]`), "Apply.", []byte(`[]`), "raw", "anthropic", "m", "hash", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Analysis{
		ID:             "a1",
		UserID:         "alice",
		ResumeID:       "R1",
		ResumeName:     "Backend",
		JobPostingID:   "jp1",
		JobText:        "Senior Engineer",
		FitScore:       82,
		Suggestions:    []string{"Lead with Go"},
		StrategicNotes: "Apply.",
		RawText:        "raw",
		Provider:       "anthropic",
		Model:          "m",
		PromptHash:     "hash",
		CreatedAt:      created,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateMissingResumeIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analyses")).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "analyses_resume_id_fkey"})

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Analysis{ID: "a1", UserID: "alice", ResumeID: "gone", FitScore: 50})
	if !errors.Is(err, resumes.ErrNotFound) {
		t.Fatalf("expected resume not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDDecodesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(analysisColumns).AddRow(
		"a1", "alice", "R1", "Backend", "jp1", "Senior Engineer", "linkedin", "",
		82, []byte(`["Lead with Go","Quantify"]`), "Apply.", []byte(`[{"title":"Summary","body":"Good."}]`),
		"raw", "anthropic", "m", "hash", created,
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 LIMIT 1")).
		WithArgs("a1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.GetByID(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FitScore != 82 || len(got.Suggestions) != 2 || got.JobSource != "linkedin" {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if len(got.Sections) != 1 || got.Sections[0] != (llm.Section{Title: "Summary", Body: "Good."}) {
		t.Fatalf("unexpected sections %+v", got.Sections)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDMissingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(analysisColumns))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCountAndDeleteByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM analyses WHERE resume_id = $1")).
		WithArgs("R1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analyses WHERE user_id = $1")).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := &PGRepo{DB: db}
	n, err := repo.CountByResume(context.Background(), "R1")
	if err != nil || n != 3 {
		t.Fatalf("CountByResume = %d, %v", n, err)
	}
	n, err = repo.DeleteByUser(context.Background(), "alice")
	if err != nil || n != 3 {
		t.Fatalf("DeleteByUser = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
