package analyses

import (
	"context"
	"fmt"
	"log/slog"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/clauses"
	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/internal/llm"
	"github.com/JaimeStill/covenant/internal/loader"
	"github.com/JaimeStill/covenant/internal/prompts"
	"github.com/JaimeStill/covenant/internal/report"
	"github.com/JaimeStill/covenant/internal/workflow"
)

// Outcome is everything one pipeline run produces.
type Outcome struct {
	Document loader.Document
	Clauses  clauses.Result
	Report   report.FinalReport
}

// Pipeline runs load, clause extraction, the workflow graph, and report
// postprocessing. It holds no persistence and is shared by the API and CLI.
type Pipeline struct {
	loader     *loader.Loader
	runtime    *workflow.Runtime
	confidence string
	logger     *slog.Logger
}

func NewPipeline(l *loader.Loader, rt *workflow.Runtime, confidence string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		loader:     l,
		runtime:    rt,
		confidence: confidence,
		logger:     logger.With("system", "pipeline"),
	}
}

// BuildPipeline wires the model-backed gateway, classifier, planner, and
// loader from configuration. Instructions resolve through resolver so
// stored prompt overrides apply.
func BuildPipeline(
	agent *gaconfig.AgentConfig,
	analysis *config.AnalysisConfig,
	resolver prompts.Resolver,
	logger *slog.Logger,
) (*Pipeline, error) {
	policy, err := llm.ParsePolicy(analysis.FallbackPolicy)
	if err != nil {
		return nil, err
	}

	complete := llm.AgentCompleter(agent)

	gateway, err := llm.NewWithPolicy(complete, policy, logger)
	if err != nil {
		return nil, err
	}

	classifier := llm.NewClassifier(
		complete,
		resolver,
		analysis.MaxTextChars,
		analysis.Serialize(),
		logger,
	)

	rt := &workflow.Runtime{
		Planner: agents.NewPlanner(classifier, gateway, resolver, analysis.MaxTextChars, logger),
		Logger:  logger.With("workflow", "analysis"),
	}

	l := loader.NewFromConfig(agent, analysis, resolver, logger)

	return NewPipeline(l, rt, analysis.ConfidenceSource, logger), nil
}

// Run loads a contract file and analyzes its text. Loader failures are
// returned before any model call is made.
func (p *Pipeline) Run(ctx context.Context, filename string, data []byte, s Settings) (Outcome, error) {
	doc, err := p.loader.Load(ctx, filename, data)
	if err != nil {
		return Outcome{}, fmt.Errorf("load %s: %w", filename, err)
	}

	out, err := p.RunText(ctx, doc.Text, s)
	if err != nil {
		return Outcome{}, err
	}

	out.Document = doc
	return out, nil
}

// RunText analyzes contract text that is already loaded.
func (p *Pipeline) RunText(ctx context.Context, text string, s Settings) (Outcome, error) {
	extracted := clauses.Extract(text)

	final, err := workflow.Execute(ctx, p.runtime, text)
	if err != nil {
		return Outcome{}, err
	}

	src, err := report.NewConfidenceSource(p.confidence, final.ContractClassification, nil)
	if err != nil {
		return Outcome{}, err
	}

	final = report.Postprocess(final, report.Settings{
		Tone:          s.Tone,
		RiskThreshold: s.RiskThreshold,
		Confidence:    src,
	})

	p.logger.InfoContext(ctx, "analysis complete",
		"contract_type", final.ContractClassification.ContractType,
		"agents", len(final.SelectedAgents),
		"risk_score", final.RiskScore,
		"missing_clauses", len(extracted.Missing),
	)

	return Outcome{Clauses: extracted, Report: final}, nil
}
