package workflow

import (
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// State keys, in the order the pipeline populates them.
const (
	KeyContractText   = "contract_text"
	KeyClassification = "classification"
	KeySelectedAgents = "selected_agents"
	KeyAgentOutputs   = "agent_outputs"
	KeyFinalReport    = "final_report"
)

// Node names.
const (
	NodeClassify     = "classify"
	NodeSelectAgents = "select_agents"
	NodeRunAgents    = "run_agents"
	NodeBuildReport  = "build_report"
)

func get[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: missing %s", ErrStageOrder, key)
	}

	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s has unexpected type %T", key, val)
	}

	return v, nil
}

// advance reads the predecessor value at from and ensures the value at to
// has not been set yet.
func advance[T any](s state.State, from, to string) (T, error) {
	v, err := get[T](s, from)
	if err != nil {
		return v, err
	}

	if _, exists := s.Get(to); exists {
		var zero T
		return zero, fmt.Errorf("%w: %s already set", ErrStageOrder, to)
	}

	return v, nil
}
