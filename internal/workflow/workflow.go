// Package workflow runs the contract analysis pipeline as a linear state
// graph: classify, select_agents, run_agents, build_report. Each node reads
// the previous stage's value and returns a new state with exactly one
// additional key.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/covenant/internal/report"
)

// ErrEmptyContract is returned when Execute receives blank contract text.
var ErrEmptyContract = errors.New("contract text is empty")

// Execute runs the pipeline over text and returns the assembled report.
// A failed stage aborts the run with a *StageError naming it.
func Execute(ctx context.Context, rt *Runtime, text string) (report.FinalReport, error) {
	if strings.TrimSpace(text) == "" {
		return report.FinalReport{}, ErrEmptyContract
	}

	f := &failure{}

	graph, err := buildGraph(rt, f)
	if err != nil {
		return report.FinalReport{}, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil).Set(KeyContractText, text)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		if se := f.get(); se != nil {
			return report.FinalReport{}, se
		}
		return report.FinalReport{}, fmt.Errorf("execute graph: %w", err)
	}

	return get[report.FinalReport](final, KeyFinalReport)
}

func buildGraph(rt *Runtime, f *failure) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("covenant-analysis")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{NodeClassify, ClassifyNode(rt, f)},
		{NodeSelectAgents, SelectAgentsNode(rt, f)},
		{NodeRunAgents, RunAgentsNode(rt, f)},
		{NodeBuildReport, BuildReportNode(rt, f)},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	for i := 1; i < len(nodes); i++ {
		if err := graph.AddEdge(nodes[i-1].name, nodes[i].name, nil); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint(NodeClassify); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(NodeBuildReport); err != nil {
		return nil, err
	}

	return graph, nil
}
