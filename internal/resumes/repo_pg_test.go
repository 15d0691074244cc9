package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateAssignsVersionNumber(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("INSERT INTO resumes").
		WithArgs(
			"resume-1",
			"cand-1",
			"recruiter-1",
			"cv.pdf",
			"resumes/abc/resume-1-cv.pdf",
			"hash",
			int64(1024),
			"application/pdf",
			3, // 2 prior + 1
			StatusPending,
			ProgressUploaded,
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), Resume{
		ID:               "resume-1",
		CandidateID:      "cand-1",
		UploaderID:       "recruiter-1",
		OriginalFilename: "cv.pdf",
		StorageKey:       "resumes/abc/resume-1-cv.pdf",
		ContentHash:      "hash",
		SizeBytes:        1024,
		MimeType:         "application/pdf",
		Status:           StatusPending,
		Progress:         ProgressUploaded,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.VersionNumber != 3 {
		t.Errorf("version = %d, want 3", created.VersionNumber)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusKeepsPriorError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE resumes").
		WithArgs("resume-1", StatusCompleted, ProgressDone, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatus(context.Background(), "resume-1", StatusCompleted, ProgressDone, nil); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE resumes").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", StatusError, ProgressStarted, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoReplaceSectionsDeletesThenInserts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM resume_sections").
		WithArgs("resume-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO resume_sections").
		WithArgs("sec-1", "resume-1", "summary", "text", 0, 4, 0, 85).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceSections(context.Background(), "resume-1", []Section{{
		ID:            "sec-1",
		ResumeID:      "resume-1",
		SectionType:   "summary",
		Content:       "text",
		StartPosition: 0,
		EndPosition:   4,
		SequenceOrder: 0,
		Confidence:    85,
	}})
	if err != nil {
		t.Fatalf("ReplaceSections: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
