// Package llm wraps the language model backend behind a single text
// completion Gateway and a zero-shot contract Classifier.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Gateway turns a prompt into cleaned completion text.
// Failures wrap ErrBackendUnavailable.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Completer performs one raw completion call against a model backend.
type Completer func(ctx context.Context, prompt string) (string, error)

// AgentCompleter returns a Completer that creates a go-agents agent per call
// and issues a chat request. Decoding parameters come from cfg.
func AgentCompleter(cfg *gaconfig.AgentConfig) Completer {
	return func(ctx context.Context, prompt string) (string, error) {
		a, err := agent.New(cfg)
		if err != nil {
			return "", fmt.Errorf("create agent: %w", err)
		}

		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("chat call: %w", err)
		}

		return resp.Content(), nil
	}
}

type gateway struct {
	complete Completer
	logger   *slog.Logger
}

// New creates a Gateway that propagates backend failures to the caller.
func New(complete Completer, logger *slog.Logger) Gateway {
	return &gateway{
		complete: complete,
		logger:   logger.With("system", "llm"),
	}
}

func (g *gateway) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := g.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	text := Clean(out, prompt)
	g.logger.DebugContext(ctx, "completion received", "chars", len(text))
	return text, nil
}

// Clean removes any echo of prompt from output and trims surrounding whitespace.
func Clean(output, prompt string) string {
	if prompt != "" {
		output = strings.ReplaceAll(output, prompt, "")
	}
	return strings.TrimSpace(output)
}

// Truncate limits text to at most maxChars runes. A non-positive maxChars
// disables the limit.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}

	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}
