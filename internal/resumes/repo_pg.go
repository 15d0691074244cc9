package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `
id, candidate_id, uploader_id, original_filename, storage_key, content_hash,
size_bytes, mime_type, version_number, status, progress, error_message,
COALESCE(extracted_text, ''), COALESCE(word_count, 0), created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Resume{}, err
	}
	defer tx.Rollback()

	// Version number is assigned inside the transaction so concurrent
	// uploads for the same candidate cannot collide.
	var prior int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resumes WHERE candidate_id = $1`,
		resume.CandidateID).Scan(&prior); err != nil {
		return Resume{}, err
	}
	resume.VersionNumber = prior + 1

	const query = `
INSERT INTO resumes (
	id, candidate_id, uploader_id, original_filename, storage_key, content_hash,
	size_bytes, mime_type, version_number, status, progress
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at, updated_at`
	if err := tx.QueryRowContext(ctx, query,
		resume.ID,
		resume.CandidateID,
		resume.UploaderID,
		resume.OriginalFilename,
		resume.StorageKey,
		resume.ContentHash,
		resume.SizeBytes,
		resume.MimeType,
		resume.VersionNumber,
		resume.Status,
		resume.Progress,
	).Scan(&resume.CreatedAt, &resume.UpdatedAt); err != nil {
		return Resume{}, err
	}
	if err := tx.Commit(); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	resume, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return resume, err
}

func (r *PGRepo) ListByCandidate(ctx context.Context, candidateID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+resumeColumns+`
FROM resumes
WHERE candidate_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, candidateID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateExtraction(ctx context.Context, id, text string, wordCount int, status string, progress int) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE resumes
SET extracted_text = $2, word_count = $3, status = $4, progress = $5, updated_at = now()
WHERE id = $1`, id, text, wordCount, status, progress)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string, progress int, errorMessage *string) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE resumes
SET status = $2, progress = $3, error_message = COALESCE($4, error_message), updated_at = now()
WHERE id = $1`, id, status, progress, errorMessage)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) ReplaceSections(ctx context.Context, resumeID string, secs []Section) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resume_sections WHERE resume_id = $1`, resumeID); err != nil {
		return err
	}
	const insert = `
INSERT INTO resume_sections (id, resume_id, section_type, content, start_position, end_position, sequence_order, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, s := range secs {
		if _, err := tx.ExecContext(ctx, insert,
			s.ID, resumeID, s.SectionType, s.Content,
			s.StartPosition, s.EndPosition, s.SequenceOrder, s.Confidence); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PGRepo) ListSections(ctx context.Context, resumeID string) ([]Section, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, resume_id, section_type, content, start_position, end_position, sequence_order, confidence, created_at
FROM resume_sections
WHERE resume_id = $1
ORDER BY sequence_order`, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Section{}
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.ResumeID, &s.SectionType, &s.Content,
			&s.StartPosition, &s.EndPosition, &s.SequenceOrder, &s.Confidence, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var resume Resume
	var errorMessage sql.NullString
	if err := row.Scan(
		&resume.ID,
		&resume.CandidateID,
		&resume.UploaderID,
		&resume.OriginalFilename,
		&resume.StorageKey,
		&resume.ContentHash,
		&resume.SizeBytes,
		&resume.MimeType,
		&resume.VersionNumber,
		&resume.Status,
		&resume.Progress,
		&errorMessage,
		&resume.ExtractedText,
		&resume.WordCount,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	); err != nil {
		return Resume{}, err
	}
	if errorMessage.Valid {
		resume.ErrorMessage = &errorMessage.String
	}
	return resume, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
