package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-review-backend/internal/agents"
	"resume-review-backend/internal/queue"
	"resume-review-backend/internal/ratelimit"
	"resume-review-backend/internal/resumes"
	"resume-review-backend/internal/sections"
	"resume-review-backend/internal/shared/metrics"
	"resume-review-backend/internal/shared/telemetry"
	"resume-review-backend/internal/shared/util"
)

// AgentRunner abstracts the agent pipeline for the orchestrator.
type AgentRunner interface {
	Run(ctx context.Context, in agents.Input) (agents.Output, error)
}

// Service orchestrates review requests: creation, dispatch, agent
// execution and result persistence.
type Service struct {
	Repo     Repo
	Resumes  resumes.Repo
	Pipeline AgentRunner
	Gate     *ratelimit.Limiter
	// Queue takes over dispatch when configured; otherwise completion
	// runs on an in-process goroutine.
	Queue queue.Client
}

// CreateInput is one review request as submitted by a recruiter.
type CreateInput struct {
	ResumeID        string
	TargetRole      string
	TargetIndustry  string
	ExperienceLevel string
}

// Create validates preconditions, applies the analysis rate gate and
// persists a new pending request before dispatching it. A precondition or
// gate rejection leaves nothing behind.
func (s *Service) Create(ctx context.Context, requesterID string, in CreateInput) (ReviewRequest, error) {
	if requesterID == "" || in.ResumeID == "" {
		return ReviewRequest{}, errors.New("requester and resume are required")
	}

	resume, err := s.Resumes.GetByID(ctx, in.ResumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return ReviewRequest{}, ErrNotFound
		}
		return ReviewRequest{}, err
	}
	if resume.Status != resumes.StatusCompleted {
		return ReviewRequest{}, fmt.Errorf("%w: resume is %s", ErrResumeNotReady, resume.Status)
	}

	if s.Gate != nil {
		if ok, wait := s.Gate.Allow(requesterID); !ok {
			metrics.IncRateLimited()
			return ReviewRequest{}, &ratelimit.LimitError{Scope: "analysis", RetryAfter: wait}
		}
	}

	req := ReviewRequest{
		ID:              uuid.NewString(),
		ResumeID:        in.ResumeID,
		RequesterID:     requesterID,
		TargetRole:      strings.TrimSpace(in.TargetRole),
		TargetIndustry:  strings.TrimSpace(in.TargetIndustry),
		ExperienceLevel: strings.TrimSpace(in.ExperienceLevel),
		ReviewType:      ReviewTypeFull,
		Status:          StatusPending,
		RequestedAt:     time.Now().UTC(),
	}
	if err := s.Repo.CreateRequest(ctx, req); err != nil {
		return ReviewRequest{}, fmt.Errorf("create review request: %w", err)
	}

	telemetry.Stage("review", req.ID, "", StatusPending, map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
		"resume_id":  req.ResumeID,
	})

	if s.Queue != nil {
		msg := queue.Message{
			ReviewRequestID: req.ID,
			RequestID:       telemetry.RequestIDFromContext(ctx),
			EnqueuedAt:      time.Now().UTC().Format(time.RFC3339),
			Version:         1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			// Queue outage falls back to in-process completion so the
			// request does not strand in pending.
			telemetry.Warn("review.enqueue_failed", map[string]any{
				"review_request_id": req.ID,
				"error":             err.Error(),
			})
			go s.Process(telemetry.BackgroundWithRequestID(ctx), req.ID)
		}
		return req, nil
	}

	go s.Process(telemetry.BackgroundWithRequestID(ctx), req.ID)
	return req, nil
}

// Get returns a request together with its result once completed.
func (s *Service) Get(ctx context.Context, id string) (ReviewRequest, *ReviewResult, []FeedbackItem, error) {
	req, err := s.Repo.GetRequest(ctx, id)
	if err != nil {
		return ReviewRequest{}, nil, nil, err
	}
	if req.Status != StatusCompleted {
		return req, nil, nil, nil
	}
	result, items, err := s.Repo.GetResult(ctx, id)
	if err != nil {
		return ReviewRequest{}, nil, nil, err
	}
	return req, &result, items, nil
}

// List returns a resume's review requests, newest first.
func (s *Service) List(ctx context.Context, resumeID string, limit, offset int) ([]ReviewRequest, error) {
	if resumeID == "" {
		return nil, errors.New("resumeId is required")
	}
	return s.Repo.ListByResume(ctx, resumeID, limit, offset)
}

// Process drives one review request through the agent pipeline to a
// terminal status. It is called either from an in-process goroutine after
// Create or by the queue worker; both paths are idempotent against a
// request that already left pending.
func (s *Service) Process(ctx context.Context, requestID string) {
	startedAt := time.Now().UTC()
	defer func() {
		if r := recover(); r != nil {
			s.failReview(ctx, requestID, fmt.Errorf("panic: %v", r), startedAt)
		}
	}()

	if err := s.Repo.UpdateRequestStatus(ctx, requestID, StatusProcessing, nil); err != nil {
		s.failReview(ctx, requestID, fmt.Errorf("set processing failed: %w", err), startedAt)
		return
	}
	metrics.IncReviewStarted()
	telemetry.Stage("review", requestID, StatusPending, StatusProcessing, map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
	})

	req, err := s.Repo.GetRequest(ctx, requestID)
	if err != nil {
		s.failReview(ctx, requestID, fmt.Errorf("request lookup: %w", err), startedAt)
		return
	}
	resume, err := s.Resumes.GetByID(ctx, req.ResumeID)
	if err != nil {
		s.failReview(ctx, requestID, fmt.Errorf("resume lookup: %w", err), startedAt)
		return
	}
	secs, err := s.Resumes.ListSections(ctx, req.ResumeID)
	if err != nil {
		s.failReview(ctx, requestID, fmt.Errorf("sections lookup: %w", err), startedAt)
		return
	}

	out, err := s.Pipeline.Run(ctx, agents.Input{
		ReviewRequestID: req.ID,
		ResumeText:      resume.ExtractedText,
		Sections:        toSegments(secs),
		TargetRole:      req.TargetRole,
		TargetIndustry:  req.TargetIndustry,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		s.failReview(ctx, requestID, fmt.Errorf("agent pipeline: %w", err), startedAt)
		return
	}

	agg := Aggregate(out)
	completedAt := time.Now().UTC()
	result := ReviewResult{
		ID:               uuid.NewString(),
		ReviewRequestID:  req.ID,
		OverallScore:     agg.Overall,
		ATSScore:         agg.ATS,
		ContentScore:     agg.Content,
		FormattingScore:  agg.Formatting,
		ExecutiveSummary: agg.ExecutiveSummary,
		Detailed: DetailedScores{
			StructureAnalysis: out.Structure,
			AppealAnalysis:    out.Appeal,
			MarketTier:        agg.MarketTier,
		},
		RawOutput:        rawAgentOutput(out),
		Model:            out.Model,
		ProcessingTimeMs: completedAt.Sub(startedAt).Milliseconds(),
	}
	items := buildFeedbackItems(result.ID, out, secs)

	if err := s.Repo.CompleteWithResult(ctx, requestID, result, items); err != nil {
		s.failReview(ctx, requestID, fmt.Errorf("store result: %w", err), startedAt)
		return
	}

	metrics.IncReviewCompleted()
	metrics.ObserveReviewDurationMs(float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0)
	telemetry.Stage("review", requestID, StatusProcessing, StatusCompleted, map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"resume_id":   req.ResumeID,
		"overall":     agg.Overall,
		"market_tier": agg.MarketTier,
		"duration_ms": result.ProcessingTimeMs,
	})
}

func (s *Service) failReview(ctx context.Context, requestID string, cause error, startedAt time.Time) {
	msg := util.SanitizeErrorMessage(cause)
	if err := s.Repo.UpdateRequestStatus(context.Background(), requestID, StatusFailed, &msg); err != nil {
		telemetry.Error("review.fail_update", map[string]any{
			"review_request_id": requestID,
			"error":             err.Error(),
			"cause":             msg,
		})
	}
	metrics.IncReviewFailed()
	telemetry.Stage("review", requestID, StatusProcessing, StatusFailed, map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"error":       msg,
		"error_code":  classifyFailure(cause),
		"duration_ms": time.Since(startedAt).Milliseconds(),
	})
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeAgentTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return ErrorCodeAgentTimeout
	case strings.Contains(msg, "agent"):
		return ErrorCodeAgentFailure
	case strings.Contains(msg, "store result"), strings.Contains(msg, "lookup"), strings.Contains(msg, "set processing"):
		return ErrorCodeStorage
	default:
		return ErrorCodeInternal
	}
}

// rawAgentOutput packs both agents' unparsed responses into the payload
// persisted alongside the result.
func rawAgentOutput(out agents.Output) json.RawMessage {
	raw, err := json.Marshal(map[string]string{
		"structure": out.RawStructure,
		"appeal":    out.RawAppeal,
	})
	if err != nil {
		return nil
	}
	return raw
}

func toSegments(secs []resumes.Section) []sections.Section {
	out := make([]sections.Section, 0, len(secs))
	for _, s := range secs {
		out = append(out, sections.Section{
			Type:          sections.Type(s.SectionType),
			Content:       s.Content,
			StartPosition: s.StartPosition,
			EndPosition:   s.EndPosition,
			SequenceOrder: s.SequenceOrder,
			Confidence:    s.Confidence,
		})
	}
	return out
}

// buildFeedbackItems resolves agent section indexes into persisted section
// IDs. An index outside the section set degrades to document-wide
// feedback instead of failing the review.
func buildFeedbackItems(resultID string, out agents.Output, secs []resumes.Section) []FeedbackItem {
	drafts := make([]agents.FeedbackDraft, 0,
		len(out.Structure.SpecificFeedback)+len(out.Appeal.SpecificFeedback))
	drafts = append(drafts, out.Structure.SpecificFeedback...)
	drafts = append(drafts, out.Appeal.SpecificFeedback...)

	items := make([]FeedbackItem, 0, len(drafts))
	for _, d := range drafts {
		item := FeedbackItem{
			ID:              uuid.NewString(),
			ReviewResultID:  resultID,
			FeedbackType:    d.FeedbackType,
			Category:        d.Category,
			SeverityLevel:   clampSeverity(d.SeverityLevel),
			OriginalText:    d.OriginalText,
			SuggestedText:   d.SuggestedText,
			ConfidenceScore: d.ConfidenceScore,
		}
		if d.SectionIndex != nil && *d.SectionIndex >= 0 && *d.SectionIndex < len(secs) {
			id := secs[*d.SectionIndex].ID
			item.SectionID = &id
		}
		items = append(items, item)
	}
	return items
}

func clampSeverity(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}
