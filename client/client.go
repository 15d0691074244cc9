// Package client is a Go client for the resume review API. It covers
// uploads (single and bounded-concurrency batches), review submission,
// and status polling until terminal states.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

// Client talks to one resume review backend on behalf of one recruiter.
type Client struct {
	baseURL      string
	recruiterID  string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPollInterval overrides the status polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// New constructs a Client for the given API base URL and recruiter identity.
func New(baseURL, recruiterID string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if strings.TrimSpace(recruiterID) == "" {
		return nil, fmt.Errorf("recruiter id is required")
	}
	c := &Client{
		baseURL:      baseURL,
		recruiterID:  recruiterID,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a non-2xx response decoded from the server envelope.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.HTTPStatus, e.Code, e.Message)
}

// IsRateLimited reports whether the error is a 429 rejection.
func IsRateLimited(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.HTTPStatus == http.StatusTooManyRequests
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// UploadResult is the server acknowledgement of one upload.
type UploadResult struct {
	ResumeID      string `json:"resumeId"`
	Status        string `json:"status"`
	VersionNumber int    `json:"versionNumber"`
}

// SectionInfo is one segmented piece of the extracted resume text.
type SectionInfo struct {
	SectionName   string `json:"sectionName"`
	Content       string `json:"content"`
	StartPosition int    `json:"startPosition"`
	EndPosition   int    `json:"endPosition"`
	Confidence    int    `json:"confidence"`
}

// ExtractionResult is the extraction payload of a completed resume.
type ExtractionResult struct {
	WordCount      int           `json:"wordCount"`
	Sections       []SectionInfo `json:"sections"`
	ExtractionTime time.Time     `json:"extractionTime"`
}

// ExtractionStatus is the polling envelope for one resume.
type ExtractionStatus struct {
	ResumeID         string            `json:"resumeId"`
	Status           string            `json:"status"`
	Progress         int               `json:"progress"`
	Error            *string           `json:"error,omitempty"`
	ExtractionResult *ExtractionResult `json:"extractionResult,omitempty"`
}

// Terminal reports whether extraction reached a final state.
func (s ExtractionStatus) Terminal() bool {
	return s.Status == "completed" || s.Status == "error"
}

// ReviewParams are the targeting inputs for a review request.
type ReviewParams struct {
	TargetRole      string `json:"targetRole"`
	TargetIndustry  string `json:"targetIndustry,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
}

// ReviewAck acknowledges an accepted review request.
type ReviewAck struct {
	ReviewRequestID string `json:"reviewRequestId"`
	Status          string `json:"status"`
}

// ReviewStatus is the polling envelope for one review request.
type ReviewStatus struct {
	ReviewRequestID string          `json:"reviewRequestId"`
	ResumeID        string          `json:"resumeId"`
	Status          string          `json:"status"`
	Error           *string         `json:"error,omitempty"`
	Result          json.RawMessage `json:"result,omitempty"`
}

// Terminal reports whether the review reached a final state.
func (s ReviewStatus) Terminal() bool {
	return s.Status == "completed" || s.Status == "failed"
}

// UploadResume uploads one resume file for a candidate.
func (c *Client) UploadResume(ctx context.Context, candidateID, fileName string, data []byte) (UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("candidateId", candidateID); err != nil {
		return UploadResult{}, fmt.Errorf("write field: %w", err)
	}
	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return UploadResult{}, fmt.Errorf("write file: %w", err)
	}
	if err := w.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/resumes", &buf)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out UploadResult
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

// GetExtraction fetches the current extraction status of a resume.
func (c *Client) GetExtraction(ctx context.Context, resumeID string) (ExtractionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/resumes/"+resumeID+"/extraction", nil)
	if err != nil {
		return ExtractionStatus{}, err
	}
	var out ExtractionStatus
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return ExtractionStatus{}, err
	}
	return out, nil
}

// CreateReview submits a review request for an extracted resume.
func (c *Client) CreateReview(ctx context.Context, resumeID string, params ReviewParams) (ReviewAck, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return ReviewAck{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/resumes/"+resumeID+"/reviews", bytes.NewReader(payload))
	if err != nil {
		return ReviewAck{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out ReviewAck
	if err := c.do(req, http.StatusAccepted, &out); err != nil {
		return ReviewAck{}, err
	}
	return out, nil
}

// GetReview fetches the current status of a review request.
func (c *Client) GetReview(ctx context.Context, reviewRequestID string) (ReviewStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/reviews/"+reviewRequestID, nil)
	if err != nil {
		return ReviewStatus{}, err
	}
	var out ReviewStatus
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return ReviewStatus{}, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	req.Header.Set("X-Recruiter-Id", c.recruiterID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		if raw := resp.Header.Get("Retry-After"); raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
