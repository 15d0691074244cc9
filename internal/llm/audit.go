package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// PromptUsageRecord is one append-only audit entry for an agent invocation.
type PromptUsageRecord struct {
	ID              string          `json:"id"`
	ReviewRequestID string          `json:"reviewRequestId"`
	AgentName       string          `json:"agentName"`
	Prompt          string          `json:"prompt"`
	PromptHash      string          `json:"promptHash"`
	Variables       json.RawMessage `json:"variables,omitempty"`
	RawResponse     string          `json:"rawResponse"`
	TokenCount      int             `json:"tokenCount"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// AuditStore persists prompt usage records.
type AuditStore interface {
	Append(ctx context.Context, rec PromptUsageRecord) error
	ListByReviewRequest(ctx context.Context, reviewRequestID string) ([]PromptUsageRecord, error)
}

// MemoryAuditStore keeps records in memory for tests and local runs.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	records []PromptUsageRecord
}

// NewMemoryAuditStore constructs an empty in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

func (s *MemoryAuditStore) Append(ctx context.Context, rec PromptUsageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryAuditStore) ListByReviewRequest(ctx context.Context, reviewRequestID string) ([]PromptUsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PromptUsageRecord
	for _, rec := range s.records {
		if rec.ReviewRequestID == reviewRequestID {
			out = append(out, rec)
		}
	}
	return out, nil
}

var _ AuditStore = (*MemoryAuditStore)(nil)
