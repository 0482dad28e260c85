package agents

import (
	"errors"
	"fmt"
)

// ErrUnknownAgent identifies a request for an agent not in Definitions.
var ErrUnknownAgent = errors.New("unknown agent")

// AgentError names the agent whose analysis failed.
type AgentError struct {
	Agent string
	Err   error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// UnknownAgentMessage is the error envelope text for an unrecognized name.
func UnknownAgentMessage(name string) string {
	return fmt.Sprintf("Unknown agent '%s'", name)
}
