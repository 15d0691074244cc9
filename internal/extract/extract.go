package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned for mime types outside the accepted set.
var ErrUnsupported = errors.New("unsupported mime type")

// Result is the outcome of one extraction pass.
type Result struct {
	Text      string
	WordCount int
}

// Text converts document bytes to plain text plus a word count.
// Libraries used: github.com/ledongthuc/pdf (PDF) and
// github.com/nguyenthenguyen/docx (DOCX, with a zip/xml fallback).
func Text(ctx context.Context, data []byte, mimeType, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, errors.New("empty document")
	}

	var (
		text string
		err  error
	)
	switch NormalizeMimeType(mimeType, fileName, data) {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimeDOC:
		text, err = extractDOC(data)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
	if err != nil {
		return Result{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, errors.New("no text content found")
	}
	return Result{Text: text, WordCount: CountWords(text)}, nil
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf library panics on some malformed files instead of
	// returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	readerAt := bytes.NewReader(data)
	doc, err := docx.ReadDocxFromMemory(readerAt, int64(len(data)))
	if err != nil {
		// Some producers write non-standard zip entries the library
		// rejects; fall back to unzipping document.xml ourselves.
		return extractDOCXRaw(data)
	}
	defer doc.Close()
	return stripDocXML(doc.Editable().GetContent()), nil
}

func extractDOCXRaw(data []byte) (string, error) {
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocXML(string(raw)), nil
}

// extractDOC scrapes printable runs out of a legacy OLE container. There is
// no maintained Go reader for the binary .doc format; this keeps short
// resumes working and reports a parse failure otherwise.
func extractDOC(data []byte) (string, error) {
	if len(data) < 8 || data[0] != 0xD0 || data[1] != 0xCF {
		return "", errors.New("not an OLE compound document")
	}

	var buf strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= 16 {
			buf.Write(run)
			buf.WriteByte('\n')
		}
		run = run[:0]
	}
	for i := 0; i+1 < len(data); i += 2 {
		// Word stores body text as UTF-16LE.
		if data[i+1] == 0x00 && isPrintable(rune(data[i])) {
			run = append(run, data[i])
			continue
		}
		flush()
	}
	flush()

	text := buf.String()
	if CountWords(text) < 3 {
		return "", errors.New("could not locate text stream in .doc file")
	}
	return text, nil
}

func isPrintable(r rune) bool {
	return r == ' ' || r == '\t' || unicode.IsPrint(r)
}

func stripDocXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// NormalizeMimeType resolves generic zip/octet-stream declarations to a
// concrete document type using container contents and the file extension.
func NormalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF, MimeDOC, MimeDOCX:
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	if len(data) >= 4 && bytes.HasPrefix(data, []byte("%PDF")) {
		return MimePDF
	}
	if len(data) >= 2 && data[0] == 0xD0 && data[1] == 0xCF {
		return MimeDOC
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".doc":
		return MimeDOC
	case ".docx":
		return MimeDOCX
	default:
		return clean
	}
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}
