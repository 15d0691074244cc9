package reviews

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	requests map[string]ReviewRequest
	results  map[string]ReviewResult   // requestID -> result
	feedback map[string][]FeedbackItem // resultID -> items
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		requests: make(map[string]ReviewRequest),
		results:  make(map[string]ReviewResult),
		feedback: make(map[string][]FeedbackItem),
	}
}

func (r *MemoryRepo) CreateRequest(ctx context.Context, req ReviewRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if req.RequestedAt.IsZero() {
		req.RequestedAt = now
	}
	req.UpdatedAt = now
	r.requests[req.ID] = req
	return nil
}

func (r *MemoryRepo) GetRequest(ctx context.Context, id string) (ReviewRequest, error) {
	if err := ctx.Err(); err != nil {
		return ReviewRequest{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return ReviewRequest{}, ErrNotFound
	}
	return req, nil
}

func (r *MemoryRepo) ListByResume(ctx context.Context, resumeID string, limit, offset int) ([]ReviewRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var all []ReviewRequest
	for _, req := range r.requests {
		if req.ResumeID == resumeID {
			all = append(all, req)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].RequestedAt.After(all[j].RequestedAt)
	})
	if offset >= len(all) {
		return []ReviewRequest{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *MemoryRepo) UpdateRequestStatus(ctx context.Context, id, status string, errorMessage *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.Status = status
	if errorMessage != nil {
		req.ErrorMessage = errorMessage
	}
	req.UpdatedAt = time.Now().UTC()
	if status == StatusFailed {
		now := req.UpdatedAt
		req.CompletedAt = &now
	}
	r.requests[id] = req
	return nil
}

func (r *MemoryRepo) CompleteWithResult(ctx context.Context, requestID string, result ReviewResult, items []FeedbackItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return ErrNotFound
	}

	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.ReviewRequestID = requestID
	r.results[requestID] = result

	copied := make([]FeedbackItem, len(items))
	copy(copied, items)
	for i := range copied {
		copied[i].ReviewResultID = result.ID
		if copied[i].CreatedAt.IsZero() {
			copied[i].CreatedAt = now
		}
	}
	r.feedback[result.ID] = copied

	req.Status = StatusCompleted
	req.CompletedAt = &now
	req.UpdatedAt = now
	r.requests[requestID] = req
	return nil
}

func (r *MemoryRepo) GetResult(ctx context.Context, requestID string) (ReviewResult, []FeedbackItem, error) {
	if err := ctx.Err(); err != nil {
		return ReviewResult{}, nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.requests[requestID]; !ok {
		return ReviewResult{}, nil, ErrNotFound
	}
	result, ok := r.results[requestID]
	if !ok {
		return ReviewResult{}, nil, ErrNoResult
	}
	items := make([]FeedbackItem, len(r.feedback[result.ID]))
	copy(items, r.feedback[result.ID])
	return result, items, nil
}

var _ Repo = (*MemoryRepo)(nil)
