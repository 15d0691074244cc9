package client

import (
	"context"
	"time"
)

// WaitForExtraction polls a resume until its extraction reaches a terminal
// state or the context is cancelled. Cancelling only stops the poller; the
// server-side pipeline keeps running.
func (c *Client) WaitForExtraction(ctx context.Context, resumeID string) (ExtractionStatus, error) {
	return poll(ctx, c.pollInterval, func(ctx context.Context) (ExtractionStatus, bool, error) {
		status, err := c.GetExtraction(ctx, resumeID)
		if err != nil {
			return ExtractionStatus{}, false, err
		}
		return status, status.Terminal(), nil
	})
}

// WaitForReview polls a review request until it reaches a terminal state
// or the context is cancelled.
func (c *Client) WaitForReview(ctx context.Context, reviewRequestID string) (ReviewStatus, error) {
	return poll(ctx, c.pollInterval, func(ctx context.Context) (ReviewStatus, bool, error) {
		status, err := c.GetReview(ctx, reviewRequestID)
		if err != nil {
			return ReviewStatus{}, false, err
		}
		return status, status.Terminal(), nil
	})
}

func poll[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, bool, error)) (T, error) {
	var zero T

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		value, done, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return value, nil
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-ticker.C:
		}
	}
}

// BatchProgress projects overall progress over a set of resumes being
// extracted together.
type BatchProgress struct {
	Total     int
	Terminal  int
	Failed    int
	Percent   int
	PerResume map[string]int
}

// ProjectProgress combines per-resume extraction statuses into a single
// progress view. Each resume contributes its progress percentage equally.
func ProjectProgress(statuses []ExtractionStatus) BatchProgress {
	progress := BatchProgress{
		Total:     len(statuses),
		PerResume: make(map[string]int, len(statuses)),
	}
	if len(statuses) == 0 {
		return progress
	}

	sum := 0
	for _, s := range statuses {
		pct := s.Progress
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		progress.PerResume[s.ResumeID] = pct
		sum += pct
		if s.Terminal() {
			progress.Terminal++
		}
		if s.Status == "error" {
			progress.Failed++
		}
	}
	progress.Percent = sum / len(statuses)
	return progress
}
