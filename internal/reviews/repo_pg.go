package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const requestColumns = `
id, resume_id, requester_id, target_role, target_industry, experience_level,
review_type, status, error_message, requested_at, completed_at, updated_at`

func (r *PGRepo) CreateRequest(ctx context.Context, req ReviewRequest) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO review_requests (
	id, resume_id, requester_id, target_role, target_industry, experience_level, review_type, status
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.ResumeID, req.RequesterID, req.TargetRole, req.TargetIndustry,
		req.ExperienceLevel, req.ReviewType, req.Status)
	return err
}

func (r *PGRepo) GetRequest(ctx context.Context, id string) (ReviewRequest, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM review_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewRequest{}, ErrNotFound
	}
	return req, err
}

func (r *PGRepo) ListByResume(ctx context.Context, resumeID string, limit, offset int) ([]ReviewRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+requestColumns+`
FROM review_requests
WHERE resume_id = $1
ORDER BY requested_at DESC
LIMIT $2 OFFSET $3`, resumeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ReviewRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateRequestStatus(ctx context.Context, id, status string, errorMessage *string) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE review_requests
SET status = $2,
    error_message = COALESCE($3, error_message),
    completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN now() ELSE completed_at END,
    updated_at = now()
WHERE id = $1`, id, status, errorMessage)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CompleteWithResult(ctx context.Context, requestID string, result ReviewResult, items []FeedbackItem) error {
	detailed, err := json.Marshal(result.Detailed)
	if err != nil {
		return fmt.Errorf("marshal detailed scores: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO review_results (
	id, review_request_id, overall_score, ats_score, content_score, formatting_score,
	executive_summary, detailed_scores, raw_output, model, processing_time_ms
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		result.ID, requestID, result.OverallScore, result.ATSScore, result.ContentScore,
		result.FormattingScore, result.ExecutiveSummary, detailed, nullableJSON(result.RawOutput),
		result.Model, result.ProcessingTimeMs); err != nil {
		return err
	}

	const insertItem = `
INSERT INTO review_feedback_items (
	id, review_result_id, section_id, feedback_type, category, severity_level,
	original_text, suggested_text, confidence_score
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, insertItem,
			item.ID, result.ID, item.SectionID, item.FeedbackType, item.Category,
			item.SeverityLevel, item.OriginalText, item.SuggestedText, item.ConfidenceScore); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
UPDATE review_requests
SET status = $2, completed_at = now(), updated_at = now()
WHERE id = $1`, requestID, StatusCompleted)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *PGRepo) GetResult(ctx context.Context, requestID string) (ReviewResult, []FeedbackItem, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT id, review_request_id, COALESCE(overall_score, 0), COALESCE(ats_score, 0),
       COALESCE(content_score, 0), COALESCE(formatting_score, 0), executive_summary,
       detailed_scores, raw_output, model, processing_time_ms, created_at
FROM review_results
WHERE review_request_id = $1`, requestID)

	var result ReviewResult
	var detailed, rawOutput []byte
	if err := row.Scan(&result.ID, &result.ReviewRequestID, &result.OverallScore,
		&result.ATSScore, &result.ContentScore, &result.FormattingScore,
		&result.ExecutiveSummary, &detailed, &rawOutput, &result.Model,
		&result.ProcessingTimeMs, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReviewResult{}, nil, ErrNoResult
		}
		return ReviewResult{}, nil, err
	}
	if err := json.Unmarshal(detailed, &result.Detailed); err != nil {
		return ReviewResult{}, nil, fmt.Errorf("unmarshal detailed scores: %w", err)
	}
	if len(rawOutput) > 0 {
		result.RawOutput = rawOutput
	}

	rows, err := r.DB.QueryContext(ctx, `
SELECT id, review_result_id, section_id, feedback_type, category, severity_level,
       COALESCE(original_text, ''), COALESCE(suggested_text, ''), confidence_score, created_at
FROM review_feedback_items
WHERE review_result_id = $1
ORDER BY created_at, id`, result.ID)
	if err != nil {
		return ReviewResult{}, nil, err
	}
	defer rows.Close()

	items := []FeedbackItem{}
	for rows.Next() {
		var item FeedbackItem
		var sectionID sql.NullString
		if err := rows.Scan(&item.ID, &item.ReviewResultID, &sectionID, &item.FeedbackType,
			&item.Category, &item.SeverityLevel, &item.OriginalText, &item.SuggestedText,
			&item.ConfidenceScore, &item.CreatedAt); err != nil {
			return ReviewResult{}, nil, err
		}
		if sectionID.Valid {
			item.SectionID = &sectionID.String
		}
		items = append(items, item)
	}
	return result, items, rows.Err()
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func scanRequest(row interface{ Scan(dest ...any) error }) (ReviewRequest, error) {
	var req ReviewRequest
	var errorMessage sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(
		&req.ID,
		&req.ResumeID,
		&req.RequesterID,
		&req.TargetRole,
		&req.TargetIndustry,
		&req.ExperienceLevel,
		&req.ReviewType,
		&req.Status,
		&errorMessage,
		&req.RequestedAt,
		&completedAt,
		&req.UpdatedAt,
	); err != nil {
		return ReviewRequest{}, err
	}
	if errorMessage.Valid {
		req.ErrorMessage = &errorMessage.String
	}
	if completedAt.Valid {
		req.CompletedAt = &completedAt.Time
	}
	return req, nil
}

var _ Repo = (*PGRepo)(nil)
