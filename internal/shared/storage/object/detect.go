package object

import (
	"net/http"
	"path"
	"strings"
)

// Resume document MIME types the stores tag uploads with.
const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DetectContentType sniffs the leading bytes of an upload and resolves the
// ambiguous cases resume documents produce: a .docx sniffs as a plain zip
// container and a legacy .doc as an opaque binary, so the file extension
// settles those.
func DetectContentType(fileName string, sniff []byte) string {
	detected := http.DetectContentType(sniff)
	base := strings.ToLower(strings.TrimSpace(strings.Split(detected, ";")[0]))

	switch strings.ToLower(path.Ext(fileName)) {
	case ".docx":
		if base == "application/zip" || base == "application/octet-stream" {
			return MimeDOCX
		}
	case ".doc":
		if base == "application/octet-stream" || base == "application/x-ole-storage" {
			return MimeDOC
		}
	case ".pdf":
		if base == "application/octet-stream" {
			return MimePDF
		}
	}
	return detected
}
