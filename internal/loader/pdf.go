package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

func (l *Loader) loadPDF(ctx context.Context, data []byte) (Document, error) {
	count, err := PageCount(data)
	if err != nil {
		return Document{}, err
	}

	pages, err := extractPages(data, count)
	if err != nil {
		return Document{}, err
	}

	var transcribed []int
	if l.transcriber != nil {
		transcribed, err = l.transcribeEmpty(ctx, data, pages)
		if err != nil {
			l.logger.WarnContext(ctx, "scanned pages skipped", "error", err)
		}
	}

	var parts []string
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	doc := Document{
		Text:        strings.Join(parts, "\n\n"),
		PageCount:   count,
		Transcribed: transcribed,
	}

	if len(parts) == 0 && err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrEmptyDocument, err)
	}

	return doc, nil
}

// extractPages reads the text layer of each page, indexed from zero.
func extractPages(data []byte, count int) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrCorruptDocument, err)
	}

	fonts := make(map[string]*pdf.Font)
	pages := make([]string, count)

	for i := range count {
		p := r.Page(i + 1)
		if p.V.IsNull() {
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}

		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrCorruptDocument, i+1, err)
		}
		pages[i] = text
	}

	return pages, nil
}

// transcribeEmpty fills pages without a text layer using the transcriber
// and returns the 1-based numbers of the pages it filled. Pages that fail
// to render or transcribe stay empty and are reported in the returned
// error, which wraps ErrTranscription.
func (l *Loader) transcribeEmpty(ctx context.Context, data []byte, pages []string) ([]int, error) {
	var empty []int
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			empty = append(empty, i+1)
		}
	}

	if len(empty) == 0 {
		return nil, nil
	}

	dir, err := os.MkdirTemp("", "covenant-scan-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp directory: %w", ErrTranscription, err)
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write temp pdf: %w", ErrTranscription, err)
	}

	images, err := renderPages(pdfPath, empty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
		done = make([]bool, len(empty))
	)
	g.SetLimit(min(l.workers, len(empty)))

	for i, n := range empty {
		g.Go(func() error {
			text, err := l.transcriber.Transcribe(ctx, images[i])
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("page %d: %w", n, err))
				mu.Unlock()
				return nil
			}

			pages[n-1] = text
			done[i] = true
			return nil
		})
	}
	g.Wait()

	var transcribed []int
	for i, n := range empty {
		if done[i] {
			transcribed = append(transcribed, n)
		}
	}

	if len(transcribed) > 0 {
		l.logger.InfoContext(ctx, "pages transcribed", "pages", transcribed)
	}

	if len(errs) > 0 {
		return transcribed, fmt.Errorf("%w: %w", ErrTranscription, errors.Join(errs...))
	}
	return transcribed, nil
}
