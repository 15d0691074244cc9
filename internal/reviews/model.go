package reviews

import (
	"encoding/json"
	"time"

	"resume-review-backend/internal/agents"
)

// Review request statuses: pending -> processing -> {completed, failed}.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ReviewTypeFull is the only review type currently offered.
const ReviewTypeFull = "full"

// Market tiers derived from the aggregated scores.
const (
	TierEntry     = "entry"
	TierMid       = "mid"
	TierSenior    = "senior"
	TierExecutive = "executive"
)

// ReviewRequest is one review job for a resume. A resume can be reviewed
// many times; every re-analysis is a fresh request.
type ReviewRequest struct {
	ID              string     `json:"id"`
	ResumeID        string     `json:"resumeId"`
	RequesterID     string     `json:"requesterId"`
	TargetRole      string     `json:"targetRole"`
	TargetIndustry  string     `json:"targetIndustry"`
	ExperienceLevel string     `json:"experienceLevel"`
	ReviewType      string     `json:"reviewType"`
	Status          string     `json:"status"`
	ErrorMessage    *string    `json:"errorMessage,omitempty"`
	RequestedAt     time.Time  `json:"requestedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// DetailedScores is the persisted JSONB payload combining both agents.
type DetailedScores struct {
	StructureAnalysis agents.StructureAnalysis `json:"structureAnalysis"`
	AppealAnalysis    agents.AppealAnalysis    `json:"appealAnalysis"`
	MarketTier        string                   `json:"marketTier"`
}

// ReviewResult exists exactly when its request completed; it is written in
// the same transaction as the status flip.
type ReviewResult struct {
	ID               string         `json:"id"`
	ReviewRequestID  string         `json:"reviewRequestId"`
	OverallScore     float64        `json:"overallScore"`
	ATSScore         float64        `json:"atsScore"`
	ContentScore     float64        `json:"contentScore"`
	FormattingScore  float64        `json:"formattingScore"`
	ExecutiveSummary string         `json:"executiveSummary"`
	Detailed         DetailedScores `json:"detailedScores"`
	// RawOutput keeps the unparsed agent responses for debugging a
	// completed review.
	RawOutput        json.RawMessage `json:"rawOutput,omitempty"`
	Model            string          `json:"model"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// FeedbackItem anchors one piece of agent feedback to a resume section.
// SectionID is nil for document-wide feedback or when the section was
// deleted since.
type FeedbackItem struct {
	ID              string    `json:"id"`
	ReviewResultID  string    `json:"reviewResultId"`
	SectionID       *string   `json:"sectionId,omitempty"`
	FeedbackType    string    `json:"feedbackType"`
	Category        string    `json:"category"`
	SeverityLevel   int       `json:"severityLevel"`
	OriginalText    string    `json:"originalText,omitempty"`
	SuggestedText   string    `json:"suggestedText,omitempty"`
	ConfidenceScore int       `json:"confidenceScore"`
	CreatedAt       time.Time `json:"createdAt"`
}
