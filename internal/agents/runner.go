package agents

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Runner fans a contract out to several analyzers at once and joins the results.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger.With("system", "runner")}
}

// Run dispatches one goroutine per analyzer against the same text and
// returns results keyed by name. Every dispatched call runs to completion
// even after a sibling fails. The first failure is returned as an
// *AgentError naming that analyzer; no partial mapping is returned.
func (r *Runner) Run(ctx context.Context, analyzers map[string]Analyzer, text string) (map[string]Result, error) {
	names := make([]string, 0, len(analyzers))
	for name := range analyzers {
		names = append(names, name)
	}
	slices.Sort(names)

	results := make([]Result, len(names))

	var g errgroup.Group
	g.SetLimit(max(len(names), 1))

	for i, name := range names {
		g.Go(func() error {
			res, err := analyzers[name].Analyze(ctx, text)
			if err != nil {
				return &AgentError{Agent: name, Err: err}
			}

			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.ErrorContext(ctx, "agent fan-out failed", "error", err)
		return nil, err
	}

	out := make(map[string]Result, len(names))
	for i, name := range names {
		out[name] = results[i]
	}

	r.logger.InfoContext(ctx, "agent fan-out complete", "agents", names)
	return out, nil
}
