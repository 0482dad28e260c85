package agents

import (
	"context"
	"fmt"

	"github.com/JaimeStill/covenant/internal/llm"
	"github.com/JaimeStill/covenant/internal/prompts"
)

// Analysis is the free-text output of one domain agent.
type Analysis struct {
	Analysis string `json:"analysis"`
}

// Result is the uniform agent envelope. A successful run sets Agent and
// Result; an unknown agent request sets only Error.
type Result struct {
	Agent  string    `json:"agent,omitempty"`
	Result *Analysis `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// Text returns the analysis text, or empty for an error envelope.
func (r Result) Text() string {
	if r.Result == nil {
		return ""
	}
	return r.Result.Analysis
}

// Analyzer produces an analysis envelope for contract text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

// Agent is a domain specialist defined by a Definition.
type Agent struct {
	def      Definition
	gateway  llm.Gateway
	prompts  prompts.Resolver
	maxChars int
}

// New creates an Agent for def. Contract text beyond maxChars runes is
// dropped from the prompt.
func New(def Definition, gateway llm.Gateway, resolver prompts.Resolver, maxChars int) *Agent {
	return &Agent{
		def:      def,
		gateway:  gateway,
		prompts:  resolver,
		maxChars: maxChars,
	}
}

// Definition returns the agent's definition.
func (a *Agent) Definition() Definition {
	return a.def
}

// Analyze fills the domain prompt with text and wraps the model output verbatim.
func (a *Agent) Analyze(ctx context.Context, text string) (Result, error) {
	prompt, err := prompts.Compose(
		ctx, a.prompts, a.def.Stage,
		"CONTRACT:\n"+llm.Truncate(text, a.maxChars),
	)
	if err != nil {
		return Result{}, fmt.Errorf("compose %s prompt: %w", a.def.Name, err)
	}

	out, err := a.gateway.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Agent:  a.def.Display,
		Result: &Analysis{Analysis: out},
	}, nil
}
