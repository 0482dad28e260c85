package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/llm"
	"github.com/JaimeStill/covenant/internal/report"
)

// ClassifyNode sets the contract classification. A classifier failure
// aborts the workflow; no default classification is substituted.
//
// Each node constructor accepts the execution's failure recorder; nil is
// allowed when a node runs outside Execute.
func ClassifyNode(rt *Runtime, f *failure) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		text, err := advance[string](s, KeyContractText, KeyClassification)
		if err != nil {
			return s, f.record(NodeClassify, err)
		}

		c, err := rt.Planner.Classify(ctx, text)
		if err != nil {
			return s, f.record(NodeClassify, err)
		}

		rt.Logger.InfoContext(
			ctx, "classify node complete",
			"contract_type", c.ContractType,
			"confidence", c.Confidence,
		)

		return s.Set(KeyClassification, c), nil
	})
}

// SelectAgentsNode sets the agents chosen for the classification.
func SelectAgentsNode(rt *Runtime, f *failure) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		c, err := advance[llm.Classification](s, KeyClassification, KeySelectedAgents)
		if err != nil {
			return s, f.record(NodeSelectAgents, err)
		}

		selected := rt.Planner.Select(c)

		rt.Logger.InfoContext(ctx, "select_agents node complete", "agents", selected)

		return s.Set(KeySelectedAgents, selected), nil
	})
}

// RunAgentsNode fans the contract out to every selected agent and joins
// the results. Any agent failure aborts the workflow.
func RunAgentsNode(rt *Runtime, f *failure) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		selected, err := advance[[]string](s, KeySelectedAgents, KeyAgentOutputs)
		if err != nil {
			return s, f.record(NodeRunAgents, err)
		}

		text, err := get[string](s, KeyContractText)
		if err != nil {
			return s, f.record(NodeRunAgents, err)
		}

		outputs, err := rt.Planner.RunAgents(ctx, selected, text)
		if err != nil {
			return s, f.record(NodeRunAgents, err)
		}

		rt.Logger.InfoContext(ctx, "run_agents node complete", "agent_count", len(outputs))

		return s.Set(KeyAgentOutputs, outputs), nil
	})
}

// BuildReportNode assembles the final report from the earlier stages.
func BuildReportNode(rt *Runtime, f *failure) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		outputs, err := advance[map[string]agents.Result](s, KeyAgentOutputs, KeyFinalReport)
		if err != nil {
			return s, f.record(NodeBuildReport, err)
		}

		c, err := get[llm.Classification](s, KeyClassification)
		if err != nil {
			return s, f.record(NodeBuildReport, err)
		}

		selected, err := get[[]string](s, KeySelectedAgents)
		if err != nil {
			return s, f.record(NodeBuildReport, err)
		}

		for _, name := range selected {
			if _, ok := outputs[name]; !ok {
				return s, f.record(NodeBuildReport, fmt.Errorf("missing output for agent %s", name))
			}
		}

		r := report.Build(c, selected, outputs)

		rt.Logger.InfoContext(ctx, "build_report node complete", "agents", len(selected))

		return s.Set(KeyFinalReport, r), nil
	})
}
