package pipeline

// AgentStatus represents the terminal state of one agent execution within a
// run: the run itself is a linear state machine that either completes every
// agent or aborts at the first failure.
type AgentStatus string

const (
	StatusCompleted AgentStatus = "completed"
	StatusFailed    AgentStatus = "failed"
)
