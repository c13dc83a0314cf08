package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalDependency marks a failed external call (timeout, non-2xx
	// status, malformed response). Agents wrap their network errors with it
	// so callers can distinguish dependency failures from everything else.
	ErrExternalDependency = errors.New("external dependency failed")

	// ErrEmptyAgentName is returned when constructing an orchestrator with
	// an agent whose name is empty.
	ErrEmptyAgentName = errors.New("agent name must not be empty")

	// ErrDuplicateAgent is returned when two agents in one orchestrator
	// share a name.
	ErrDuplicateAgent = errors.New("agent with this name already exists")

	// ErrNilAgent is returned when the agent list contains a nil entry.
	ErrNilAgent = errors.New("agent must not be nil")
)

// ConfigError represents an error in the orchestrator's agent list, detected
// eagerly at construction.
type ConfigError struct {
	// Agent is the name of the agent involved (if any)
	Agent string
	// Err is the underlying error
	Err error
}

func (e *ConfigError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("pipeline configuration: agent %q: %v", e.Agent, e.Err)
	}
	return fmt.Sprintf("pipeline configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AgentError wraps a failure raised by one agent's Run. The cause is
// preserved unmodified; the orchestrator adds only the agent name.
type AgentError struct {
	// Agent is the name of the agent that failed
	Agent string
	// Err is the underlying error
	Err error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %q: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}
