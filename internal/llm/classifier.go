package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/covenant/internal/prompts"
	"github.com/JaimeStill/covenant/pkg/formatting"
)

// Labels is the fixed candidate set for contract classification.
var Labels = []string{
	"Service Agreement",
	"Employment Contract",
	"NDA",
	"Vendor Agreement",
	"Partnership Agreement",
	"SAAS Agreement",
}

// Classification is the top-ranked contract type and its score.
type Classification struct {
	ContractType string  `json:"contract_type"`
	Confidence   float64 `json:"confidence"`
}

// Classifier assigns a contract type from Labels.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

type scores struct {
	Scores map[string]float64 `json:"scores"`
}

type classifier struct {
	complete Completer
	prompts  prompts.Resolver
	maxChars int
	mu       *sync.Mutex
	logger   *slog.Logger
}

// NewClassifier creates a model-backed zero-shot Classifier. When serialize
// is true, calls are made one at a time across all callers.
func NewClassifier(
	complete Completer,
	resolver prompts.Resolver,
	maxChars int,
	serialize bool,
	logger *slog.Logger,
) Classifier {
	c := &classifier{
		complete: complete,
		prompts:  resolver,
		maxChars: maxChars,
		logger:   logger.With("system", "classifier"),
	}
	if serialize {
		c.mu = &sync.Mutex{}
	}
	return c
}

func (c *classifier) Classify(ctx context.Context, text string) (Classification, error) {
	if strings.TrimSpace(text) == "" {
		return Classification{}, fmt.Errorf("%w: empty contract text", ErrClassificationFailed)
	}

	prompt, err := prompts.Compose(
		ctx, c.prompts, prompts.StageClassify,
		candidateSection(Labels),
		"CONTRACT:\n"+Truncate(text, c.maxChars),
	)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	if c.mu != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
	}

	out, err := c.complete(ctx, prompt)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %w: %w", ErrClassificationFailed, ErrBackendUnavailable, err)
	}

	parsed, err := formatting.Parse[scores](Clean(out, prompt))
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	result, ok := Top(parsed.Scores, Labels)
	if !ok {
		return Classification{}, fmt.Errorf("%w: no candidate label scored", ErrClassificationFailed)
	}

	c.logger.InfoContext(ctx, "contract classified",
		"contract_type", result.ContractType,
		"confidence", result.Confidence,
	)

	return result, nil
}

// Top returns the highest-scoring label. Keys in scored match labels
// case-insensitively, ties go to the earlier label, and scores are clamped
// to [0,1]. Reports false when no label has a score.
func Top(scored map[string]float64, labels []string) (Classification, bool) {
	normalized := make(map[string]float64, len(scored))
	for k, v := range scored {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}

	var (
		best  Classification
		found bool
	)

	for _, label := range labels {
		score, ok := normalized[strings.ToLower(label)]
		if !ok {
			continue
		}
		score = min(max(score, 0), 1)
		if !found || score > best.Confidence {
			best = Classification{ContractType: label, Confidence: score}
			found = true
		}
	}

	return best, found
}

func candidateSection(labels []string) string {
	var sb strings.Builder
	sb.WriteString("CANDIDATE LABELS:")
	for _, l := range labels {
		sb.WriteString("\n- ")
		sb.WriteString(l)
	}
	return sb.String()
}
