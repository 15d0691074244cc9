package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	// The docx library expects the companion parts; the raw fallback does not.
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromDocx(t *testing.T) {
	payload := buildDocx(t, `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>Senior Engineer</w:t></w:r></w:p><w:p><w:r><w:t>Go and Postgres</w:t></w:r></w:p></w:body></w:document>`)

	res, err := Text(context.Background(), payload, MimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(res.Text, "Senior Engineer") {
		t.Fatalf("expected heading in text, got %q", res.Text)
	}
	if res.WordCount != 5 {
		t.Fatalf("expected 5 words, got %d", res.WordCount)
	}
}

func TestTextZipDeclaredAsGenericMime(t *testing.T) {
	payload := buildDocx(t, `<w:document><w:body><w:p><w:r><w:t>hello world</w:t></w:r></w:p></w:body></w:document>`)

	res, err := Text(context.Background(), payload, "application/zip", "resume.docx")
	if err != nil {
		t.Fatalf("extract with generic mime: %v", err)
	}
	if res.WordCount != 2 {
		t.Fatalf("expected 2 words, got %d", res.WordCount)
	}
}

func TestTextCorruptPDF(t *testing.T) {
	_, err := Text(context.Background(), []byte("%PDF-1.7 garbage"), MimePDF, "resume.pdf")
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestTextUnsupportedMime(t *testing.T) {
	_, err := Text(context.Background(), []byte("plain"), "image/png", "photo.png")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextEmptyPayload(t *testing.T) {
	if _, err := Text(context.Background(), nil, MimePDF, "resume.pdf"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestTextCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Text(ctx, []byte("data"), MimePDF, "resume.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizeMimeType(t *testing.T) {
	cases := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		want     string
	}{
		{name: "explicit pdf", mime: "application/pdf", fileName: "a.pdf", want: MimePDF},
		{name: "pdf with charset", mime: "application/pdf; charset=binary", fileName: "a.pdf", want: MimePDF},
		{name: "octet-stream pdf magic", mime: "application/octet-stream", fileName: "a.bin", data: []byte("%PDF-1.4"), want: MimePDF},
		{name: "octet-stream doc magic", mime: "application/octet-stream", fileName: "a.bin", data: []byte{0xD0, 0xCF, 0x11, 0xE0}, want: MimeDOC},
		{name: "extension fallback", mime: "application/octet-stream", fileName: "resume.docx", want: MimeDOCX},
		{name: "unknown stays", mime: "text/html", fileName: "a.html", want: "text/html"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeMimeType(tc.mime, tc.fileName, tc.data); got != tc.want {
				t.Fatalf("NormalizeMimeType = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	if got := CountWords("  one\ttwo\nthree  "); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := CountWords(""); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
