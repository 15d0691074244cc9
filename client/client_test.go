package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.URL, "recruiter-1", WithPollInterval(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewValidation(t *testing.T) {
	if _, err := New("", "recruiter-1"); err == nil {
		t.Error("empty base url accepted")
	}
	if _, err := New("http://localhost:8080", ""); err == nil {
		t.Error("empty recruiter id accepted")
	}
}

func TestUploadResume(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/resumes" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Recruiter-Id"); got != "recruiter-1" {
			t.Errorf("identity header = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("candidateId"); got != "cand-1" {
			t.Errorf("candidateId = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(UploadResult{
			ResumeID:      "resume-1",
			Status:        "pending",
			VersionNumber: 1,
		})
	})

	c := newTestClient(t, handler)
	result, err := c.UploadResume(context.Background(), "cand-1", "cv.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.ResumeID != "resume-1" || result.VersionNumber != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestUploadResumeDecodesAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"rate_limit_exceeded","message":"too many uploads"}}`))
	})

	c := newTestClient(t, handler)
	_, err := c.UploadResume(context.Background(), "cand-1", "cv.pdf", []byte("data"))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Code != "rate_limit_exceeded" || apiErr.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if apiErr.RetryAfter != 7*time.Second {
		t.Errorf("retry after = %v", apiErr.RetryAfter)
	}
	if !IsRateLimited(err) {
		t.Error("IsRateLimited = false")
	}
}

func TestUploadBatchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(UploadResult{ResumeID: "resume-1", Status: "pending"})
	})

	c := newTestClient(t, handler)
	results := c.UploadBatch(context.Background(), []UploadSpec{
		{CandidateID: "cand-1", FileName: "cv.pdf", Data: []byte("data")},
	}, 3)

	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("err = %v", results[0].Err)
	}
	if results[0].Attempts != 2 {
		t.Errorf("attempts = %d, want 2", results[0].Attempts)
	}
	if results[0].Result.ResumeID != "resume-1" {
		t.Errorf("result = %+v", results[0].Result)
	}
}

func TestUploadBatchDoesNotRetryValidationErrors(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_FILE_TYPE","message":"unsupported file type"}}`))
	})

	c := newTestClient(t, handler)
	results := c.UploadBatch(context.Background(), []UploadSpec{
		{CandidateID: "cand-1", FileName: "cv.txt", Data: []byte("data")},
	}, 3)

	var apiErr *APIError
	if !errors.As(results[0].Err, &apiErr) || apiErr.Code != "INVALID_FILE_TYPE" {
		t.Fatalf("err = %v", results[0].Err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestUploadBatchBoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	inflight, peak := 0, 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(UploadResult{ResumeID: "r", Status: "pending"})
	})

	c := newTestClient(t, handler)
	specs := make([]UploadSpec, 8)
	for i := range specs {
		specs[i] = UploadSpec{CandidateID: "cand-1", FileName: "cv.pdf", Data: []byte("data")}
	}
	results := c.UploadBatch(context.Background(), specs, 1)

	for i, res := range results {
		if res.Err != nil {
			t.Errorf("upload %d: %v", i, res.Err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if peak > uploadConcurrency {
		t.Errorf("peak concurrency = %d, want <= %d", peak, uploadConcurrency)
	}
}

func TestWaitForExtractionPollsToTerminal(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := ExtractionStatus{ResumeID: "resume-1", Status: "processing", Progress: 60}
		if calls.Add(1) >= 3 {
			status.Status = "completed"
			status.Progress = 100
			status.ExtractionResult = &ExtractionResult{WordCount: 42}
		}
		_ = json.NewEncoder(w).Encode(status)
	})

	c := newTestClient(t, handler)
	status, err := c.WaitForExtraction(context.Background(), "resume-1")
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if status.Status != "completed" || status.ExtractionResult == nil {
		t.Errorf("status = %+v", status)
	}
	if got := calls.Load(); got < 3 {
		t.Errorf("calls = %d, want >= 3", got)
	}
}

func TestWaitForReviewCancellable(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ReviewStatus{ReviewRequestID: "req-1", Status: "processing"})
	})

	c := newTestClient(t, handler)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.WaitForReview(ctx, "req-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestProjectProgress(t *testing.T) {
	statuses := []ExtractionStatus{
		{ResumeID: "a", Status: "completed", Progress: 100},
		{ResumeID: "b", Status: "processing", Progress: 60},
		{ResumeID: "c", Status: "error", Progress: 10},
		{ResumeID: "d", Status: "pending", Progress: 0},
	}

	progress := ProjectProgress(statuses)
	if progress.Total != 4 || progress.Terminal != 2 || progress.Failed != 1 {
		t.Errorf("progress = %+v", progress)
	}
	if progress.Percent != 42 {
		t.Errorf("percent = %d, want 42", progress.Percent)
	}
	if progress.PerResume["b"] != 60 {
		t.Errorf("per-resume = %v", progress.PerResume)
	}

	empty := ProjectProgress(nil)
	if empty.Percent != 0 || empty.Total != 0 {
		t.Errorf("empty = %+v", empty)
	}
}
