package llm

import (
	"context"
	"database/sql"
)

type pgAuditStore struct {
	DB *sql.DB
}

// NewPGAuditStore constructs a Postgres-backed prompt usage audit store.
func NewPGAuditStore(db *sql.DB) AuditStore {
	return &pgAuditStore{DB: db}
}

func (s *pgAuditStore) Append(ctx context.Context, rec PromptUsageRecord) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO prompt_usage_records (id, review_request_id, agent_name, prompt, prompt_hash, variables, raw_response, token_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.ReviewRequestID, rec.AgentName, rec.Prompt, rec.PromptHash, nullableJSON(rec.Variables), rec.RawResponse, rec.TokenCount)
	return err
}

func (s *pgAuditStore) ListByReviewRequest(ctx context.Context, reviewRequestID string) ([]PromptUsageRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, review_request_id, agent_name, prompt, prompt_hash, COALESCE(variables, 'null'::jsonb), raw_response, token_count, created_at
FROM prompt_usage_records
WHERE review_request_id = $1
ORDER BY created_at`, reviewRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PromptUsageRecord
	for rows.Next() {
		var rec PromptUsageRecord
		var variables []byte
		if err := rows.Scan(&rec.ID, &rec.ReviewRequestID, &rec.AgentName, &rec.Prompt, &rec.PromptHash, &variables, &rec.RawResponse, &rec.TokenCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if string(variables) != "null" {
			rec.Variables = variables
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
