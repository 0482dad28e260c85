package agents

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/covenant/internal/llm"
	"github.com/JaimeStill/covenant/internal/prompts"
)

// DefaultSelection is the fixed agent selection returned by Select.
var DefaultSelection = []string{Legal, Compliance, Finance}

// Plan is the batch output of Planner.Plan.
type Plan struct {
	Classification llm.Classification `json:"classification"`
	SelectedAgents []string           `json:"selected_agents"`
	AgentRoles     map[string]Role    `json:"agent_roles"`
	AgentOutputs   map[string]Result  `json:"agent_outputs"`
}

// Planner classifies contracts, selects agents, and dispatches them.
type Planner struct {
	classifier llm.Classifier
	agents     map[string]*Agent
	runner     *Runner
	logger     *slog.Logger
}

// NewPlanner builds one Agent per Definition over a shared gateway.
func NewPlanner(
	classifier llm.Classifier,
	gateway llm.Gateway,
	resolver prompts.Resolver,
	maxChars int,
	logger *slog.Logger,
) *Planner {
	agents := make(map[string]*Agent, len(Definitions))
	for _, d := range Definitions {
		agents[d.Name] = New(d, gateway, resolver, maxChars)
	}

	return &Planner{
		classifier: classifier,
		agents:     agents,
		runner:     NewRunner(logger),
		logger:     logger.With("system", "planner"),
	}
}

// Classify returns the contract type of text.
func (p *Planner) Classify(ctx context.Context, text string) (llm.Classification, error) {
	return p.classifier.Classify(ctx, text)
}

// Select returns the agents to run for a classification. The selection is
// currently fixed to legal, compliance, and finance; the classification is
// accepted for future policy but not consulted.
func (p *Planner) Select(_ llm.Classification) []string {
	selected := make([]string, len(DefaultSelection))
	copy(selected, DefaultSelection)
	return selected
}

// RunAgent dispatches a single named agent. An unrecognized name yields an
// error envelope rather than an error.
func (p *Planner) RunAgent(ctx context.Context, name, text string) (Result, error) {
	a, ok := p.agents[name]
	if !ok {
		p.logger.WarnContext(ctx, "unknown agent requested", "agent", name)
		return Result{Error: UnknownAgentMessage(name)}, nil
	}

	res, err := a.Analyze(ctx, text)
	if err != nil {
		return Result{}, &AgentError{Agent: name, Err: err}
	}
	return res, nil
}

// RunAgents runs the named agents concurrently. Unknown names receive an
// error envelope in the result mapping.
func (p *Planner) RunAgents(ctx context.Context, names []string, text string) (map[string]Result, error) {
	analyzers := make(map[string]Analyzer, len(names))
	var unknown []string

	for _, name := range names {
		if a, ok := p.agents[name]; ok {
			analyzers[name] = a
			continue
		}
		unknown = append(unknown, name)
	}

	results, err := p.runner.Run(ctx, analyzers, text)
	if err != nil {
		return nil, err
	}

	for _, name := range unknown {
		results[name] = Result{Error: UnknownAgentMessage(name)}
	}

	return results, nil
}

// Plan classifies text, selects agents, runs them concurrently, and packages
// their roles alongside the outputs.
func (p *Planner) Plan(ctx context.Context, text string) (Plan, error) {
	classification, err := p.Classify(ctx, text)
	if err != nil {
		return Plan{}, err
	}

	selected := p.Select(classification)

	outputs, err := p.RunAgents(ctx, selected, text)
	if err != nil {
		return Plan{}, err
	}

	roles := make(map[string]Role, len(selected))
	for _, name := range selected {
		if d, ok := Lookup(name); ok {
			roles[name] = d.Role
		}
	}

	return Plan{
		Classification: classification,
		SelectedAgents: selected,
		AgentRoles:     roles,
		AgentOutputs:   outputs,
	}, nil
}
