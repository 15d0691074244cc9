package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]Resume
	sections map[string][]Section // resumeID -> ordered sections
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]Resume),
		sections: make(map[string][]Section),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	prior := 0
	for _, existing := range r.byID {
		if existing.CandidateID == resume.CandidateID {
			prior++
		}
	}
	resume.VersionNumber = prior + 1
	now := time.Now().UTC()
	if resume.CreatedAt.IsZero() {
		resume.CreatedAt = now
	}
	resume.UpdatedAt = now
	r.byID[resume.ID] = resume
	return resume, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

func (r *MemoryRepo) ListByCandidate(ctx context.Context, candidateID string, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var all []Resume
	for _, resume := range r.byID {
		if resume.CandidateID == candidateID {
			all = append(all, resume)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []Resume{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *MemoryRepo) UpdateExtraction(ctx context.Context, id, text string, wordCount int, status string, progress int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	resume.ExtractedText = text
	resume.WordCount = wordCount
	resume.Status = status
	resume.Progress = progress
	resume.UpdatedAt = time.Now().UTC()
	r.byID[id] = resume
	return nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string, progress int, errorMessage *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	resume.Status = status
	resume.Progress = progress
	if errorMessage != nil {
		resume.ErrorMessage = errorMessage
	}
	resume.UpdatedAt = time.Now().UTC()
	r.byID[id] = resume
	return nil
}

func (r *MemoryRepo) ReplaceSections(ctx context.Context, resumeID string, secs []Section) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[resumeID]; !ok {
		return ErrNotFound
	}
	copied := make([]Section, len(secs))
	copy(copied, secs)
	r.sections[resumeID] = copied
	return nil
}

func (r *MemoryRepo) ListSections(ctx context.Context, resumeID string) ([]Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	secs := r.sections[resumeID]
	out := make([]Section, len(secs))
	copy(out, secs)
	sort.Slice(out, func(i, j int) bool {
		return out[i].SequenceOrder < out[j].SequenceOrder
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
