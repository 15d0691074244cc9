package resumes

import "context"

// Repo defines persistence operations for resumes and their sections.
type Repo interface {
	// Create persists a new resume and assigns its version number from the
	// count of prior uploads for the candidate.
	Create(ctx context.Context, resume Resume) (Resume, error)
	GetByID(ctx context.Context, id string) (Resume, error)
	// ListByCandidate returns resumes newest-first, honoring limit/offset.
	ListByCandidate(ctx context.Context, candidateID string, limit, offset int) ([]Resume, error)
	// UpdateExtraction stores extracted text and word count together with
	// the status/progress milestone.
	UpdateExtraction(ctx context.Context, id, text string, wordCount int, status string, progress int) error
	UpdateStatus(ctx context.Context, id, status string, progress int, errorMessage *string) error
	// ReplaceSections swaps the full section set for a resume.
	ReplaceSections(ctx context.Context, resumeID string, secs []Section) error
	ListSections(ctx context.Context, resumeID string) ([]Section, error)
}
