package reviews

import "time"

// CreateResponse acknowledges an accepted review request.
type CreateResponse struct {
	ReviewRequestID string `json:"reviewRequestId"`
	Status          string `json:"status"`
}

// FeedbackItemResponse is the outward-facing feedback representation.
type FeedbackItemResponse struct {
	SectionID       *string `json:"sectionId,omitempty"`
	FeedbackType    string  `json:"feedbackType"`
	Category        string  `json:"category"`
	SeverityLevel   int     `json:"severityLevel"`
	OriginalText    string  `json:"originalText,omitempty"`
	SuggestedText   string  `json:"suggestedText,omitempty"`
	ConfidenceScore int     `json:"confidenceScore"`
}

// ResultResponse is the result payload of a completed review.
type ResultResponse struct {
	OverallScore     float64                `json:"overallScore"`
	ATSScore         float64                `json:"atsScore"`
	ContentScore     float64                `json:"contentScore"`
	FormattingScore  float64                `json:"formattingScore"`
	ExecutiveSummary string                 `json:"executiveSummary"`
	DetailedScores   DetailedScores         `json:"detailedScores"`
	Feedback         []FeedbackItemResponse `json:"feedback"`
	Model            string                 `json:"model"`
	ProcessingTimeMs int64                  `json:"processingTimeMs"`
}

// StatusResponse is the polling envelope for one review request.
type StatusResponse struct {
	ReviewRequestID string          `json:"reviewRequestId"`
	ResumeID        string          `json:"resumeId"`
	Status          string          `json:"status"`
	Error           *string         `json:"error,omitempty"`
	RequestedAt     time.Time       `json:"requestedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	Result          *ResultResponse `json:"result,omitempty"`
}

func toStatusResponse(req ReviewRequest, result *ReviewResult, items []FeedbackItem) StatusResponse {
	resp := StatusResponse{
		ReviewRequestID: req.ID,
		ResumeID:        req.ResumeID,
		Status:          req.Status,
		Error:           req.ErrorMessage,
		RequestedAt:     req.RequestedAt,
		CompletedAt:     req.CompletedAt,
	}
	if result == nil {
		return resp
	}
	out := ResultResponse{
		OverallScore:     result.OverallScore,
		ATSScore:         result.ATSScore,
		ContentScore:     result.ContentScore,
		FormattingScore:  result.FormattingScore,
		ExecutiveSummary: result.ExecutiveSummary,
		DetailedScores:   result.Detailed,
		Feedback:         make([]FeedbackItemResponse, 0, len(items)),
		Model:            result.Model,
		ProcessingTimeMs: result.ProcessingTimeMs,
	}
	for _, item := range items {
		out.Feedback = append(out.Feedback, FeedbackItemResponse{
			SectionID:       item.SectionID,
			FeedbackType:    item.FeedbackType,
			Category:        item.Category,
			SeverityLevel:   item.SeverityLevel,
			OriginalText:    item.OriginalText,
			SuggestedText:   item.SuggestedText,
			ConfidenceScore: item.ConfidenceScore,
		})
	}
	resp.Result = &out
	return resp
}
