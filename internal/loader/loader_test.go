package loader_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/covenant/internal/loader"
)

func newLoader() *loader.Loader {
	return loader.New(nil, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		filename string
		data     []byte
		want     string
	}{
		{"msa.pdf", nil, loader.ContentTypePDF},
		{"MSA.PDF", nil, loader.ContentTypePDF},
		{"notes.txt", nil, loader.ContentTypeText},
		{"upload", []byte("%PDF-1.7\n"), loader.ContentTypePDF},
		{"upload", []byte("plain agreement text"), loader.ContentTypeText},
		{"scan.png", []byte("\x89PNG\r\n\x1a\n"), "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := loader.DetectContentType(tt.filename, tt.data); got != tt.want {
				t.Errorf("DetectContentType(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestLoadText(t *testing.T) {
	text := "This Agreement may be terminated by either party with 30 days written notice."

	doc, err := newLoader().Load(context.Background(), "contract.txt", []byte(text))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if doc.Text != text {
		t.Errorf("Text = %q, want %q", doc.Text, text)
	}
	if doc.ContentType != loader.ContentTypeText {
		t.Errorf("ContentType = %q", doc.ContentType)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nda.txt")
	if err := os.WriteFile(path, []byte("Confidential information shall not be disclosed."), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := newLoader().LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if doc.Text == "" {
		t.Error("Text is empty")
	}

	if _, err := newLoader().LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     error
	}{
		{"unsupported", "scan.png", []byte("\x89PNG\r\n\x1a\n"), loader.ErrUnsupportedFormat},
		{"blank text", "empty.txt", []byte("  \n\t"), loader.ErrEmptyDocument},
		{"invalid utf8", "bad.txt", []byte{0xff, 0xfe, 0xfd}, loader.ErrCorruptDocument},
		{"corrupt pdf", "broken.pdf", []byte("not a pdf at all"), loader.ErrCorruptDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLoader().Load(context.Background(), tt.filename, tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{loader.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{loader.ErrCorruptDocument, http.StatusUnprocessableEntity},
		{loader.ErrEmptyDocument, http.StatusUnprocessableEntity},
		{loader.ErrTranscription, http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := loader.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// buildPDF assembles a minimal PDF with one page per entry. Empty entries
// produce pages with no text layer.
func buildPDF(pages ...string) []byte {
	n := len(pages)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	kids := make([]string, n)
	for i, text := range pages {
		pageObj := 4 + i*2
		kids[i] = fmt.Sprintf("%d 0 R", pageObj)

		var stream string
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

type failingTranscriber struct{}

func (failingTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return "", errors.New("vision backend offline")
}

func TestLoadPDF(t *testing.T) {
	data := buildPDF("This Agreement may be terminated by either party.", "Payment is due within 30 days.")

	doc, err := newLoader().Load(context.Background(), "msa.pdf", data)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if doc.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", doc.PageCount)
	}
	if doc.ContentType != loader.ContentTypePDF {
		t.Errorf("ContentType = %q", doc.ContentType)
	}
	for _, want := range []string{"This Agreement may be terminated", "Payment is due within 30 days."} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("Text = %q, missing %q", doc.Text, want)
		}
	}
}

func TestLoadPDFBlankPage(t *testing.T) {
	data := buildPDF("This Agreement may be terminated by either party.", "")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("without transcriber", func(t *testing.T) {
		doc, err := loader.New(nil, 2, logger).Load(context.Background(), "msa.pdf", data)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if !strings.Contains(doc.Text, "terminated") {
			t.Errorf("Text = %q", doc.Text)
		}
		if len(doc.Transcribed) != 0 {
			t.Errorf("Transcribed = %v, want none", doc.Transcribed)
		}
	})

	t.Run("transcription failure keeps text pages", func(t *testing.T) {
		doc, err := loader.New(failingTranscriber{}, 2, logger).Load(context.Background(), "msa.pdf", data)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if !strings.Contains(doc.Text, "terminated") {
			t.Errorf("Text = %q", doc.Text)
		}
		if len(doc.Transcribed) != 0 {
			t.Errorf("Transcribed = %v, want none", doc.Transcribed)
		}
	})
}

func TestLoadPDFAllPagesBlank(t *testing.T) {
	data := buildPDF("", "")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		transcriber loader.Transcriber
	}{
		{"without transcriber", nil},
		{"failing transcriber", failingTranscriber{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.New(tt.transcriber, 2, logger).Load(context.Background(), "scan.pdf", data)
			if !errors.Is(err, loader.ErrEmptyDocument) {
				t.Fatalf("Load error = %v, want ErrEmptyDocument", err)
			}
			if got := loader.MapHTTPStatus(err); got != http.StatusUnprocessableEntity {
				t.Errorf("MapHTTPStatus = %d, want %d", got, http.StatusUnprocessableEntity)
			}
		})
	}
}
