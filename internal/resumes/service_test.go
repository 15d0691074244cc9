package resumes

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resume-review-backend/internal/ratelimit"
	"resume-review-backend/internal/shared/storage/object/local"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body>` + body + `</w:body></w:document>`
	if _, err := f.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func docxParagraph(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := &Service{
		Repo:       repo,
		Store:      local.New(t.TempDir()),
		UploadGate: ratelimit.New(ratelimit.UploadLimit, ratelimit.UploadWindow),
	}
	return svc, repo
}

func waitForTerminal(t *testing.T, repo Repo, id string) Resume {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resume, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get resume: %v", err)
		}
		if resume.Status == StatusCompleted || resume.Status == StatusError {
			return resume
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("resume never reached a terminal status")
	return Resume{}
}

func TestUploadRunsPipelineToCompletion(t *testing.T) {
	svc, repo := newTestService(t)
	payload := buildDocx(t,
		docxParagraph("Summary")+
			docxParagraph("Backend engineer with years of shipping experience behind them.")+
			docxParagraph("Skills")+
			docxParagraph("Go, PostgreSQL"))

	resume, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
		CandidateID: "cand-1",
		FileName:    "cv.docx",
		MimeType:    "application/octet-stream",
		Data:        payload,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resume.Status != StatusPending || resume.Progress != ProgressUploaded {
		t.Errorf("initial state = %s/%d", resume.Status, resume.Progress)
	}
	if resume.VersionNumber != 1 {
		t.Errorf("version = %d, want 1", resume.VersionNumber)
	}
	if len(resume.ContentHash) != 64 {
		t.Errorf("content hash = %q", resume.ContentHash)
	}

	final := waitForTerminal(t, repo, resume.ID)
	if final.Status != StatusCompleted {
		t.Fatalf("final status = %s (error: %v)", final.Status, final.ErrorMessage)
	}
	if final.Progress != ProgressDone {
		t.Errorf("final progress = %d", final.Progress)
	}
	if final.WordCount == 0 {
		t.Errorf("word count not stored")
	}

	secs, err := repo.ListSections(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(secs) == 0 {
		t.Fatal("no sections stored")
	}
	for i, s := range secs {
		if s.SequenceOrder != i {
			t.Errorf("section %d out of order: %d", i, s.SequenceOrder)
		}
	}
}

func TestUploadSameFileTwiceBumpsVersion(t *testing.T) {
	svc, repo := newTestService(t)
	payload := buildDocx(t, docxParagraph("Experience")+docxParagraph("Did things."))

	first, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
		CandidateID: "cand-1", FileName: "cv.docx", MimeType: "application/octet-stream", Data: payload,
	})
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
		CandidateID: "cand-1", FileName: "cv.docx", MimeType: "application/octet-stream", Data: payload,
	})
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	if first.ContentHash != second.ContentHash {
		t.Errorf("identical payloads produced different hashes")
	}
	if second.VersionNumber != 2 {
		t.Errorf("second version = %d, want 2", second.VersionNumber)
	}
	waitForTerminal(t, repo, first.ID)
	waitForTerminal(t, repo, second.ID)
}

func TestUploadRateLimited(t *testing.T) {
	svc, _ := newTestService(t)
	payload := buildDocx(t, docxParagraph("Experience")+docxParagraph("Did things."))

	for i := 0; i < ratelimit.UploadLimit; i++ {
		if _, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
			CandidateID: "cand-1", FileName: "cv.docx", MimeType: "application/octet-stream", Data: payload,
		}); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}

	_, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
		CandidateID: "cand-1", FileName: "cv.docx", MimeType: "application/octet-stream", Data: payload,
	})
	le, ok := ratelimit.AsLimitError(err)
	if !ok {
		t.Fatalf("expected LimitError, got %v", err)
	}
	if le.RetryAfter <= 0 {
		t.Errorf("retry after = %s", le.RetryAfter)
	}

	// A different recruiter is unaffected.
	if _, err := svc.Upload(context.Background(), "recruiter-2", UploadInput{
		CandidateID: "cand-2", FileName: "cv.docx", MimeType: "application/octet-stream", Data: payload,
	}); err != nil {
		t.Errorf("other recruiter rejected: %v", err)
	}
}

func TestUploadRejectsInvalidFiles(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name     string
		fileName string
		mime     string
		data     []byte
		wantCode string
	}{
		{"empty", "cv.pdf", "application/pdf", nil, CodeEmptyFile},
		{"too large", "cv.pdf", "application/pdf", make([]byte, MaxUploadBytes+1), CodeFileTooLarge},
		{"wrong type", "cv.txt", "text/plain", []byte("hello"), CodeInvalidFileType},
	}
	for _, tc := range cases {
		_, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
			CandidateID: "cand-1", FileName: tc.fileName, MimeType: tc.mime, Data: tc.data,
		})
		ve, ok := AsValidationError(err)
		if !ok {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}
		if ve.Code != tc.wantCode {
			t.Errorf("%s: code = %s, want %s", tc.name, ve.Code, tc.wantCode)
		}
	}
}

func TestCorruptFileLandsInErrorState(t *testing.T) {
	svc, repo := newTestService(t)

	resume, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
		CandidateID: "cand-1",
		FileName:    "cv.pdf",
		MimeType:    "application/pdf",
		Data:        []byte("%PDF-1.4 not actually a pdf"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	final := waitForTerminal(t, repo, resume.ID)
	if final.Status != StatusError {
		t.Fatalf("status = %s, want %s", final.Status, StatusError)
	}
	if final.ErrorMessage == nil || *final.ErrorMessage == "" {
		t.Error("error message not recorded")
	}
	if _, err := repo.GetByID(context.Background(), resume.ID); err != nil {
		t.Errorf("failed resume should remain readable: %v", err)
	}
}

func TestBatchExtractionsIndependentFailures(t *testing.T) {
	svc, repo := newTestService(t)
	payload := buildDocx(t, docxParagraph("Experience")+docxParagraph("Did things."))

	resume, err := svc.Upload(context.Background(), "recruiter-1", UploadInput{
		CandidateID: "cand-1", FileName: "cv.docx", MimeType: "application/octet-stream", Data: payload,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	waitForTerminal(t, repo, resume.ID)

	results, err := svc.BatchExtractions(context.Background(), []string{resume.ID, "missing-id"})
	if err != nil {
		t.Fatalf("BatchExtractions: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("existing resume errored: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrNotFound) {
		t.Errorf("missing resume error = %v", results[1].Err)
	}
}

func TestBatchExtractionsCapsBatchSize(t *testing.T) {
	svc, _ := newTestService(t)
	ids := make([]string, MaxBatchExtractions+1)
	for i := range ids {
		ids[i] = "id"
	}
	_, err := svc.BatchExtractions(context.Background(), ids)
	ve, ok := AsValidationError(err)
	if !ok || !strings.Contains(ve.Message, "per batch") {
		t.Fatalf("expected batch size validation error, got %v", err)
	}
}
