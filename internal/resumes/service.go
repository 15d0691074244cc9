package resumes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"resume-review-backend/internal/extract"
	"resume-review-backend/internal/ratelimit"
	"resume-review-backend/internal/sections"
	"resume-review-backend/internal/shared/metrics"
	"resume-review-backend/internal/shared/storage/object"
	"resume-review-backend/internal/shared/telemetry"
	"resume-review-backend/internal/shared/util"
)

// MaxBatchExtractions bounds one batch extraction request.
const MaxBatchExtractions = 5

// Service contains business logic for the resume upload/extraction pipeline.
type Service struct {
	Repo       Repo
	Store      object.ObjectStore
	UploadGate *ratelimit.Limiter
}

// UploadInput is one validated-to-be upload.
type UploadInput struct {
	CandidateID string
	FileName    string
	MimeType    string
	Data        []byte
}

// Upload validates and stores a resume, then kicks off asynchronous
// extraction and segmentation. The returned resume is in status pending.
func (s *Service) Upload(ctx context.Context, uploaderID string, in UploadInput) (Resume, error) {
	if uploaderID == "" || in.CandidateID == "" {
		return Resume{}, &ValidationError{Code: CodeValidation, Message: "uploader and candidate are required"}
	}
	if err := ValidateUpload(in.FileName, in.MimeType, int64(len(in.Data))); err != nil {
		metrics.IncUploadRejected()
		return Resume{}, err
	}

	if s.UploadGate != nil {
		if ok, wait := s.UploadGate.Allow(uploaderID); !ok {
			metrics.IncRateLimited()
			metrics.IncUploadRejected()
			return Resume{}, &ratelimit.LimitError{Scope: "upload", RetryAfter: wait}
		}
	}

	sanitized, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		metrics.IncUploadRejected()
		return Resume{}, &ValidationError{Code: CodeValidation, Message: "invalid file name"}
	}

	mimeType := extract.NormalizeMimeType(in.MimeType, in.FileName, in.Data)
	id := uuid.NewString()
	key := path.Join("resumes", util.HashUserKey(in.CandidateID), id+"-"+sanitized)
	if _, err := s.Store.SaveWithKey(ctx, key, mimeType, bytes.NewReader(in.Data)); err != nil {
		return Resume{}, fmt.Errorf("store resume: %w", err)
	}

	resume := Resume{
		ID:               id,
		CandidateID:      in.CandidateID,
		UploaderID:       uploaderID,
		OriginalFilename: sanitized,
		StorageKey:       key,
		ContentHash:      util.ContentHash(in.Data),
		SizeBytes:        int64(len(in.Data)),
		MimeType:         mimeType,
		Status:           StatusPending,
		Progress:         ProgressUploaded,
		CreatedAt:        time.Now().UTC(),
	}
	created, err := s.Repo.Create(ctx, resume)
	if err != nil {
		return Resume{}, fmt.Errorf("create resume: %w", err)
	}

	metrics.IncUploadAccepted()
	telemetry.Stage("resume", created.ID, "", StatusPending, map[string]any{
		"request_id":   telemetry.RequestIDFromContext(ctx),
		"candidate_id": created.CandidateID,
		"version":      created.VersionNumber,
		"size_bytes":   created.SizeBytes,
	})

	go s.processAsync(telemetry.BackgroundWithRequestID(ctx), created.ID)

	return created, nil
}

// Get returns a resume by ID.
func (s *Service) Get(ctx context.Context, id string) (Resume, error) {
	if id == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns a candidate's resumes, newest version first.
func (s *Service) List(ctx context.Context, candidateID string, limit, offset int) ([]Resume, error) {
	if candidateID == "" {
		return nil, &ValidationError{Code: CodeValidation, Message: "candidateId is required"}
	}
	return s.Repo.ListByCandidate(ctx, candidateID, limit, offset)
}

// Extraction returns a resume together with its sections once extraction
// has completed. Sections are empty until then.
func (s *Service) Extraction(ctx context.Context, id string) (Resume, []Section, error) {
	resume, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Resume{}, nil, err
	}
	if resume.Status != StatusCompleted {
		return resume, nil, nil
	}
	secs, err := s.Repo.ListSections(ctx, id)
	if err != nil {
		return Resume{}, nil, err
	}
	return resume, secs, nil
}

// BatchResult is one entry of a batch extraction lookup.
type BatchResult struct {
	ResumeID string
	Resume   Resume
	Sections []Section
	Err      error
}

// BatchExtractions resolves up to MaxBatchExtractions resumes, each one
// independently: one missing resume does not fail the rest.
func (s *Service) BatchExtractions(ctx context.Context, ids []string) ([]BatchResult, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Code: CodeValidation, Message: "resumeIds is required"}
	}
	if len(ids) > MaxBatchExtractions {
		return nil, &ValidationError{
			Code:    CodeValidation,
			Message: fmt.Sprintf("at most %d resumes per batch", MaxBatchExtractions),
		}
	}

	out := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		resume, secs, err := s.Extraction(ctx, id)
		out = append(out, BatchResult{ResumeID: id, Resume: resume, Sections: secs, Err: err})
	}
	return out, nil
}

// processAsync drives one resume through extraction and segmentation.
// It runs detached from the upload request; failures land in the resume
// row, never in the upload response.
func (s *Service) processAsync(ctx context.Context, resumeID string) {
	startedAt := time.Now().UTC()
	defer func() {
		if r := recover(); r != nil {
			s.failResume(ctx, resumeID, ProgressStarted, fmt.Errorf("panic: %v", r), startedAt)
		}
	}()

	if err := s.Repo.UpdateStatus(ctx, resumeID, StatusProcessing, ProgressStarted, nil); err != nil {
		s.failResume(ctx, resumeID, ProgressUploaded, fmt.Errorf("set processing failed: %w", err), startedAt)
		return
	}
	telemetry.Stage("resume", resumeID, StatusPending, StatusProcessing, map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
	})

	resume, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		s.failResume(ctx, resumeID, ProgressStarted, fmt.Errorf("resume lookup: %w", err), startedAt)
		return
	}

	data, err := s.loadObject(ctx, resume.StorageKey)
	if err != nil {
		s.failResume(ctx, resumeID, ProgressStarted, fmt.Errorf("load stored file: %w", err), startedAt)
		return
	}

	result, err := extract.Text(ctx, data, resume.MimeType, resume.OriginalFilename)
	if err != nil {
		metrics.IncExtractionFailed()
		s.failResume(ctx, resumeID, ProgressStarted, fmt.Errorf("extract text: %w", err), startedAt)
		return
	}
	if err := s.Repo.UpdateExtraction(ctx, resumeID, result.Text, result.WordCount, StatusProcessing, ProgressExtracted); err != nil {
		s.failResume(ctx, resumeID, ProgressStarted, fmt.Errorf("store extraction: %w", err), startedAt)
		return
	}

	secs := make([]Section, 0)
	for _, seg := range sections.Split(result.Text) {
		secs = append(secs, Section{
			ID:            uuid.NewString(),
			ResumeID:      resumeID,
			SectionType:   string(seg.Type),
			Content:       seg.Content,
			StartPosition: seg.StartPosition,
			EndPosition:   seg.EndPosition,
			SequenceOrder: seg.SequenceOrder,
			Confidence:    seg.Confidence,
		})
	}
	if err := s.Repo.ReplaceSections(ctx, resumeID, secs); err != nil {
		s.failResume(ctx, resumeID, ProgressExtracted, fmt.Errorf("store sections: %w", err), startedAt)
		return
	}
	if err := s.Repo.UpdateStatus(ctx, resumeID, StatusCompleted, ProgressDone, nil); err != nil {
		s.failResume(ctx, resumeID, ProgressExtracted, fmt.Errorf("set completed failed: %w", err), startedAt)
		return
	}

	completedAt := time.Now().UTC()
	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0)
	telemetry.Stage("resume", resumeID, StatusProcessing, StatusCompleted, map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"word_count":  result.WordCount,
		"sections":    len(secs),
		"duration_ms": completedAt.Sub(startedAt).Milliseconds(),
	})
}

func (s *Service) failResume(ctx context.Context, resumeID string, progress int, cause error, startedAt time.Time) {
	msg := util.SanitizeErrorMessage(cause)
	if err := s.Repo.UpdateStatus(context.Background(), resumeID, StatusError, progress, &msg); err != nil {
		telemetry.Error("resume.fail_update", map[string]any{
			"resume_id": resumeID,
			"error":     err.Error(),
			"cause":     msg,
		})
	}
	telemetry.Stage("resume", resumeID, StatusProcessing, StatusError, map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"error":       msg,
		"duration_ms": time.Since(startedAt).Milliseconds(),
	})
}

func (s *Service) loadObject(ctx context.Context, key string) ([]byte, error) {
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}
