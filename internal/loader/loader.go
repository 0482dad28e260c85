// Package loader turns uploaded contract files into plain text. Plain text
// files pass through; PDFs are read from their text layer, and pages
// without one can be transcribed by a vision model.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/internal/prompts"
)

// Supported content types.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
)

// Document is the text extracted from a source file.
type Document struct {
	Text        string `json:"text"`
	ContentType string `json:"content_type"`
	PageCount   int    `json:"page_count"`
	Transcribed []int  `json:"transcribed_pages,omitempty"`
}

// Loader extracts text from contract files.
type Loader struct {
	transcriber Transcriber
	workers     int
	logger      *slog.Logger
}

// New creates a Loader. A nil transcriber leaves image-only pages empty.
// Transcription failures are logged and the affected pages skipped; the
// load fails only when no page yields text.
// workers bounds concurrent page transcriptions.
func New(transcriber Transcriber, workers int, logger *slog.Logger) *Loader {
	return &Loader{
		transcriber: transcriber,
		workers:     max(workers, 1),
		logger:      logger.With("system", "loader"),
	}
}

// NewFromConfig creates a Loader that transcribes scanned pages with the
// configured agent only when analysis.TranscribeScanned is set.
func NewFromConfig(
	agent *gaconfig.AgentConfig,
	analysis *config.AnalysisConfig,
	resolver prompts.Resolver,
	logger *slog.Logger,
) *Loader {
	var t Transcriber
	if analysis.TranscribeScanned {
		t = NewVisionTranscriber(agent, resolver)
	}
	return New(t, analysis.MaxPageWorkers, logger)
}

// LoadFile reads path from disk and extracts its text.
func (l *Loader) LoadFile(ctx context.Context, path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return l.Load(ctx, filepath.Base(path), data)
}

// Load extracts text from data. Failures wrap ErrUnsupportedFormat,
// ErrCorruptDocument, or ErrEmptyDocument.
func (l *Loader) Load(ctx context.Context, filename string, data []byte) (Document, error) {
	contentType := DetectContentType(filename, data)

	var (
		doc Document
		err error
	)

	switch contentType {
	case ContentTypeText:
		doc, err = loadText(data)
	case ContentTypePDF:
		doc, err = l.loadPDF(ctx, data)
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}

	if err != nil {
		return Document{}, err
	}

	doc.ContentType = contentType

	if strings.TrimSpace(doc.Text) == "" {
		return Document{}, ErrEmptyDocument
	}

	l.logger.InfoContext(ctx, "document loaded",
		"filename", filename,
		"content_type", contentType,
		"pages", doc.PageCount,
		"chars", utf8.RuneCountInString(doc.Text),
	)

	return doc, nil
}

// DetectContentType resolves the loader content type from the file
// extension, falling back to content sniffing.
func DetectContentType(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return ContentTypePDF
	case ".txt", ".text", ".md":
		return ContentTypeText
	}

	sniffed := http.DetectContentType(data)
	if base, _, _ := strings.Cut(sniffed, ";"); base != "" {
		return strings.TrimSpace(base)
	}
	return sniffed
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}
	return n, nil
}

func loadText(data []byte) (Document, error) {
	if !utf8.Valid(data) {
		return Document{}, fmt.Errorf("%w: text is not valid UTF-8", ErrCorruptDocument)
	}
	return Document{Text: string(data), PageCount: 1}, nil
}
