package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-pipeline/internal/fileref"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)
	if _, err := w.Write([]byte(doc.String())); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytesDocx(t *testing.T) {
	data := buildDocx(t, "Jane Doe", "Senior Engineer at Initech")

	text, err := FromBytes(context.Background(), data, mimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Initech") {
		t.Errorf("extracted text = %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Errorf("paragraph break missing: %q", text)
	}
}

func TestFromBytesZipMimeSniffsDocx(t *testing.T) {
	data := buildDocx(t, "hello")
	if _, err := FromBytes(context.Background(), data, "application/zip", "resume.docx"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
}

func TestFromBytesRealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = FromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
}

func TestFromBytesPlainText(t *testing.T) {
	text, err := FromBytes(context.Background(), []byte("  Jane Doe\nEngineer  "), "text/plain; charset=utf-8", "resume.txt")
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if text != "Jane Doe\nEngineer" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractTextResolvesReference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("Jane Doe"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	e := New(&fileref.Router{Local: fileref.NewLocal(dir)})
	text, err := e.ExtractText(context.Background(), "resume.txt", "text/plain", "resume.txt")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Jane Doe" {
		t.Errorf("text = %q", text)
	}
}
