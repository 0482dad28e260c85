package loader

import (
	"context"
	"fmt"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"github.com/JaimeStill/document-context/pkg/image"
	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/covenant/internal/llm"
	"github.com/JaimeStill/covenant/internal/prompts"
)

// Transcriber reads the text of a rendered PNG page image.
type Transcriber interface {
	Transcribe(ctx context.Context, png []byte) (string, error)
}

// VisionTranscriber sends page images to a vision-capable model.
type VisionTranscriber struct {
	agent   *gaconfig.AgentConfig
	prompts prompts.Resolver
}

// NewVisionTranscriber creates a Transcriber backed by go-agents vision calls.
func NewVisionTranscriber(cfg *gaconfig.AgentConfig, resolver prompts.Resolver) *VisionTranscriber {
	return &VisionTranscriber{agent: cfg, prompts: resolver}
}

func (v *VisionTranscriber) Transcribe(ctx context.Context, png []byte) (string, error) {
	prompt, err := prompts.Compose(ctx, v.prompts, prompts.StageTranscribe)
	if err != nil {
		return "", err
	}

	dataURI, err := encoding.EncodeImageDataURI(png, document.PNG)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	a, err := agent.New(v.agent)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Vision(ctx, prompt, []string{dataURI})
	if err != nil {
		return "", fmt.Errorf("%w: vision call: %w", llm.ErrBackendUnavailable, err)
	}

	return llm.Clean(resp.Content(), prompt), nil
}

// renderPages renders the given 1-based pages of the PDF at path to PNG.
func renderPages(path string, pages []int) ([][]byte, error) {
	doc, err := document.OpenPDF(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrCorruptDocument, err)
	}
	defer doc.Close()

	renderer, err := image.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	all, err := doc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrCorruptDocument, err)
	}

	images := make([][]byte, len(pages))
	for i, n := range pages {
		if n < 1 || n > len(all) {
			return nil, fmt.Errorf("%w: page %d out of range", ErrCorruptDocument, n)
		}

		data, err := all[n-1].ToImage(renderer, nil)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n, err)
		}
		images[i] = data
	}

	return images, nil
}
