package resumes

import "time"

// UploadResponse is returned from a successful upload.
type UploadResponse struct {
	ResumeID      string `json:"resumeId"`
	Status        string `json:"status"`
	VersionNumber int    `json:"versionNumber"`
}

// SectionResponse is the outward-facing representation of a section.
type SectionResponse struct {
	SectionName   string `json:"sectionName"`
	Content       string `json:"content"`
	StartPosition int    `json:"startPosition"`
	EndPosition   int    `json:"endPosition"`
	Confidence    int    `json:"confidence"`
}

// ExtractionResult holds the extraction payload once a resume completed.
type ExtractionResult struct {
	WordCount      int               `json:"wordCount"`
	Sections       []SectionResponse `json:"sections"`
	ExtractionTime time.Time         `json:"extractionTime"`
}

// ExtractionResponse is the polling envelope for one resume.
type ExtractionResponse struct {
	ResumeID         string            `json:"resumeId"`
	Status           string            `json:"status"`
	Progress         int               `json:"progress"`
	Error            *string           `json:"error,omitempty"`
	ExtractionResult *ExtractionResult `json:"extractionResult,omitempty"`
}

// ResumeResponse is the listing representation of a resume.
type ResumeResponse struct {
	ResumeID      string    `json:"resumeId"`
	CandidateID   string    `json:"candidateId"`
	FileName      string    `json:"fileName"`
	MimeType      string    `json:"mimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	VersionNumber int       `json:"versionNumber"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

func toExtractionResponse(resume Resume, secs []Section) ExtractionResponse {
	resp := ExtractionResponse{
		ResumeID: resume.ID,
		Status:   resume.Status,
		Progress: resume.Progress,
		Error:    resume.ErrorMessage,
	}
	if resume.Status != StatusCompleted {
		return resp
	}
	result := ExtractionResult{
		WordCount:      resume.WordCount,
		Sections:       make([]SectionResponse, 0, len(secs)),
		ExtractionTime: resume.UpdatedAt,
	}
	for _, s := range secs {
		result.Sections = append(result.Sections, SectionResponse{
			SectionName:   s.SectionType,
			Content:       s.Content,
			StartPosition: s.StartPosition,
			EndPosition:   s.EndPosition,
			Confidence:    s.Confidence,
		})
	}
	resp.ExtractionResult = &result
	return resp
}

func toResumeResponse(resume Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID:      resume.ID,
		CandidateID:   resume.CandidateID,
		FileName:      resume.OriginalFilename,
		MimeType:      resume.MimeType,
		SizeBytes:     resume.SizeBytes,
		VersionNumber: resume.VersionNumber,
		Status:        resume.Status,
		Progress:      resume.Progress,
		UploadedAt:    resume.CreatedAt,
	}
}
