package vectors

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

const (
	embedBatchSize   = 100
	embedConcurrency = 4
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenAIEmbedder embeds text with the Gemini embedding API.
type GenAIEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// NewGenAIEmbedder creates a Gemini API client for the given model. A
// positive dimensions value truncates returned vectors to that size.
func NewGenAIEmbedder(ctx context.Context, apiKey, model string, dimensions int) (*GenAIEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIEmbedder{
		client:     client,
		model:      model,
		dimensions: int32(dimensions),
	}, nil
}

func (e *GenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: taskTypeDocument}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = &e.dimensions
	}

	res, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	out := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// Embed fills the Vector of every record, batching requests to e.
func Embed(ctx context.Context, e Embedder, records []Record) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(records); start += embedBatchSize {
		batch := records[start:min(start+embedBatchSize, len(records))]

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			texts := make([]string, len(batch))
			for i, r := range batch {
				texts[i] = r.Text
			}

			vecs, err := e.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(batch))
			}

			for i := range batch {
				batch[i].Vector = vecs[i]
			}
			return nil
		})
	}

	return g.Wait()
}
