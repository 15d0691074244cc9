package client

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Batch uploads run at most this many transfers concurrently.
const uploadConcurrency = 3

// DefaultUploadAttempts bounds retry-as-resubmit per file.
const DefaultUploadAttempts = 3

// UploadSpec is one file in a batch upload.
type UploadSpec struct {
	CandidateID string
	FileName    string
	Data        []byte
}

// BatchUploadResult pairs a spec with its outcome. Err is non-nil when
// every attempt for that file failed; other files are unaffected.
type BatchUploadResult struct {
	Spec     UploadSpec
	Result   UploadResult
	Attempts int
	Err      error
}

// UploadBatch uploads the given files with bounded concurrency. Each file
// gets its own upload context; a failure is retried as a fresh submission
// up to attempts times. Results are returned in input order.
func (c *Client) UploadBatch(ctx context.Context, specs []UploadSpec, attempts int) []BatchUploadResult {
	if attempts <= 0 {
		attempts = DefaultUploadAttempts
	}

	results := make([]BatchUploadResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, spec := range specs {
		g.Go(func() error {
			results[i] = c.uploadWithRetry(gctx, spec, attempts)
			// Per-file failures stay in the result slot so the rest of
			// the batch keeps going.
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Client) uploadWithRetry(ctx context.Context, spec UploadSpec, attempts int) BatchUploadResult {
	out := BatchUploadResult{Spec: spec}
	for attempt := 1; attempt <= attempts; attempt++ {
		out.Attempts = attempt

		uploadCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		result, err := c.UploadResume(uploadCtx, spec.CandidateID, spec.FileName, spec.Data)
		cancel()

		if err == nil {
			out.Result = result
			out.Err = nil
			return out
		}
		out.Err = err

		if apiErr, ok := err.(*APIError); ok && apiErr.HTTPStatus >= 400 && apiErr.HTTPStatus < 500 &&
			apiErr.HTTPStatus != 429 {
			// Validation rejections do not improve on resubmission.
			return out
		}

		if attempt == attempts {
			return out
		}
		wait := time.Duration(attempt) * time.Second
		if apiErr, ok := err.(*APIError); ok && apiErr.RetryAfter > wait {
			wait = apiErr.RetryAfter
		}
		select {
		case <-ctx.Done():
			out.Err = ctx.Err()
			return out
		case <-time.After(wait):
		}
	}
	return out
}
