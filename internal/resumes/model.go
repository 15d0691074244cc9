package resumes

import "time"

// Resume statuses form the pipeline state machine:
// pending -> processing -> {completed, error}.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Progress milestones reported to pollers.
const (
	ProgressUploaded  = 0
	ProgressStarted   = 10
	ProgressExtracted = 60
	ProgressDone      = 100
)

// Resume is one uploaded resume version for a candidate. Rows are never
// deleted on failure; the error state is kept observable.
type Resume struct {
	ID               string     `json:"id"`
	CandidateID      string     `json:"candidateId"`
	UploaderID       string     `json:"uploaderId"`
	OriginalFilename string     `json:"originalFilename"`
	StorageKey       string     `json:"-"`
	ContentHash      string     `json:"contentHash"`
	SizeBytes        int64      `json:"sizeBytes"`
	MimeType         string     `json:"mimeType"`
	VersionNumber    int        `json:"versionNumber"`
	Status           string     `json:"status"`
	Progress         int        `json:"progress"`
	ErrorMessage     *string    `json:"errorMessage,omitempty"`
	ExtractedText    string     `json:"-"`
	WordCount        int        `json:"wordCount"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Section is one persisted segment of a resume's extracted text. Sections
// are immutable; re-extraction replaces the whole set for a resume.
type Section struct {
	ID            string    `json:"id"`
	ResumeID      string    `json:"resumeId"`
	SectionType   string    `json:"sectionType"`
	Content       string    `json:"content"`
	StartPosition int       `json:"startPosition"`
	EndPosition   int       `json:"endPosition"`
	SequenceOrder int       `json:"sequenceOrder"`
	Confidence    int       `json:"confidence"`
	CreatedAt     time.Time `json:"createdAt"`
}
