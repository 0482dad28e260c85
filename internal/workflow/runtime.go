package workflow

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/llm"
)

// Planner is the planning surface the workflow nodes call.
type Planner interface {
	Classify(ctx context.Context, text string) (llm.Classification, error)
	Select(c llm.Classification) []string
	RunAgents(ctx context.Context, names []string, text string) (map[string]agents.Result, error)
}

// Runtime bundles the dependencies that workflow nodes require.
type Runtime struct {
	Planner Planner
	Logger  *slog.Logger
}
