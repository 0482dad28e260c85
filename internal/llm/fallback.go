package llm

import (
	"context"
	"errors"
	"log/slog"
)

// FallbackPolicy selects how a Gateway reacts to backend failure.
type FallbackPolicy string

const (
	// PolicyPropagate returns backend failures to the caller.
	PolicyPropagate FallbackPolicy = "propagate"
	// PolicyFallback substitutes FallbackText and logs a warning.
	PolicyFallback FallbackPolicy = "fallback"
)

// FallbackText is substituted for a completion when the backend fails under
// PolicyFallback.
const FallbackText = "Automated analysis is unavailable for this section. " +
	"The contract should be reviewed manually for obligations, liabilities, and deadlines."

// ParsePolicy validates a configured fallback policy. Empty selects PolicyPropagate.
func ParsePolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(s) {
	case "", PolicyPropagate:
		return PolicyPropagate, nil
	case PolicyFallback:
		return PolicyFallback, nil
	default:
		return "", ErrInvalidPolicy
	}
}

// NewWithPolicy creates a Gateway over complete and applies policy.
func NewWithPolicy(complete Completer, policy FallbackPolicy, logger *slog.Logger) (Gateway, error) {
	g := New(complete, logger)

	switch policy {
	case "", PolicyPropagate:
		return g, nil
	case PolicyFallback:
		return WithFallback(g, FallbackText, logger), nil
	default:
		return nil, ErrInvalidPolicy
	}
}

type fallback struct {
	next   Gateway
	text   string
	logger *slog.Logger
}

// WithFallback decorates next so that backend failures yield text instead
// of an error. Context cancellation is still returned.
func WithFallback(next Gateway, text string, logger *slog.Logger) Gateway {
	return &fallback{
		next:   next,
		text:   text,
		logger: logger.With("system", "llm", "policy", PolicyFallback),
	}
}

func (f *fallback) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := f.next.Generate(ctx, prompt)
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil || !errors.Is(err, ErrBackendUnavailable) {
		return "", err
	}

	f.logger.WarnContext(ctx, "llm backend unavailable, substituting fallback", "error", err)
	return f.text, nil
}
