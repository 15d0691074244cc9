package reviews

import "context"

// Repo defines persistence operations for review requests and results.
type Repo interface {
	CreateRequest(ctx context.Context, req ReviewRequest) error
	GetRequest(ctx context.Context, id string) (ReviewRequest, error)
	// ListByResume returns requests newest-first, honoring limit/offset.
	ListByResume(ctx context.Context, resumeID string, limit, offset int) ([]ReviewRequest, error)
	UpdateRequestStatus(ctx context.Context, id, status string, errorMessage *string) error
	// CompleteWithResult atomically stores the result with its feedback
	// items and flips the request to completed. A request observed as
	// completed therefore always has a result.
	CompleteWithResult(ctx context.Context, requestID string, result ReviewResult, items []FeedbackItem) error
	// GetResult returns ErrNoResult while the request has not completed.
	GetResult(ctx context.Context, requestID string) (ReviewResult, []FeedbackItem, error)
}
