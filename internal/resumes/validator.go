package resumes

import (
	"fmt"
	"path/filepath"
	"strings"

	"resume-review-backend/internal/extract"
)

// MaxUploadBytes bounds a single resume upload.
const MaxUploadBytes = 10 << 20

var allowedMimeTypes = map[string]struct{}{
	extract.MimePDF:  {},
	extract.MimeDOC:  {},
	extract.MimeDOCX: {},
}

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// ValidateUpload checks filename, declared mime type and size before any
// byte is persisted. It has no side effects; every rejection is a
// ValidationError.
func ValidateUpload(fileName, mimeType string, sizeBytes int64) error {
	if strings.TrimSpace(fileName) == "" {
		return &ValidationError{Code: CodeValidation, Message: "file name is required"}
	}
	if sizeBytes == 0 {
		return &ValidationError{Code: CodeEmptyFile, Message: "uploaded file is empty"}
	}
	if sizeBytes < 0 || sizeBytes > MaxUploadBytes {
		return &ValidationError{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("file exceeds the %d MB limit", MaxUploadBytes>>20),
		}
	}

	if _, ok := allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return nil
	}
	// Browsers sometimes send generic mime types; fall back to the extension.
	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := allowedExtensions[ext]; ok {
		return nil
	}
	return &ValidationError{
		Code:    CodeInvalidFileType,
		Message: "only pdf, doc and docx files are accepted",
	}
}
