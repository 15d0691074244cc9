package agents

import "resume-review-backend/internal/sections"

// Agent names used in prompt usage records and telemetry.
const (
	AgentStructure = "structure"
	AgentAppeal    = "appeal"
)

// Input carries everything an agent needs for one review.
type Input struct {
	ReviewRequestID string
	ResumeText      string
	Sections        []sections.Section
	TargetRole      string
	TargetIndustry  string
	ExperienceLevel string
}

// StructureScores are the structure agent's sub-scores, each 0-100.
type StructureScores struct {
	Format       float64 `json:"format"`
	Organization float64 `json:"organization"`
	Tone         float64 `json:"tone"`
	Completeness float64 `json:"completeness"`
}

// AppealScores are the appeal agent's sub-scores, each 0-100.
type AppealScores struct {
	AchievementRelevance   float64 `json:"achievementRelevance"`
	SkillsAlignment        float64 `json:"skillsAlignment"`
	ExperienceFit          float64 `json:"experienceFit"`
	CompetitivePositioning float64 `json:"competitivePositioning"`
}

// FeedbackDraft is one section-anchored feedback item as an agent emits it.
// SectionIndex refers to the position in Input.Sections; nil means the
// feedback applies to the resume as a whole.
type FeedbackDraft struct {
	SectionIndex    *int   `json:"sectionIndex,omitempty"`
	FeedbackType    string `json:"feedbackType"`
	Category        string `json:"category"`
	SeverityLevel   int    `json:"severityLevel"`
	OriginalText    string `json:"originalText,omitempty"`
	SuggestedText   string `json:"suggestedText,omitempty"`
	ConfidenceScore int    `json:"confidenceScore"`
}

// StructureAnalysis is the structure agent's full output.
type StructureAnalysis struct {
	Scores           StructureScores `json:"scores"`
	Strengths        []string        `json:"strengths"`
	ImprovementAreas []string        `json:"improvementAreas"`
	SpecificFeedback []FeedbackDraft `json:"specificFeedback"`
}

// AppealAnalysis is the appeal agent's full output.
type AppealAnalysis struct {
	Scores           AppealScores    `json:"scores"`
	Strengths        []string        `json:"strengths"`
	ImprovementAreas []string        `json:"improvementAreas"`
	SpecificFeedback []FeedbackDraft `json:"specificFeedback"`
}

// Output is the combined result of a successful pipeline run.
type Output struct {
	Structure StructureAnalysis
	Appeal    AppealAnalysis
	Model     string

	// Unparsed agent responses, kept for the persisted raw output.
	RawStructure string
	RawAppeal    string
}

// Average returns the mean of the structure sub-scores.
func (s StructureScores) Average() float64 {
	return (s.Format + s.Organization + s.Tone + s.Completeness) / 4
}

// Average returns the mean of the appeal sub-scores.
func (s AppealScores) Average() float64 {
	return (s.AchievementRelevance + s.SkillsAlignment + s.ExperienceFit + s.CompetitivePositioning) / 4
}
