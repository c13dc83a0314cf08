// Package pipeline implements a sequential extraction pipeline: an ordered
// list of agents is executed against one shared context, each agent's partial
// result is merged back before the next agent runs, and the fully merged
// context is returned to the caller.
package pipeline

import "context"

// Result is the partial mapping one agent returns from a single Run call.
// Keys are merged into the shared Context with last-write-wins semantics.
// A "no match" outcome is not an error: the agent returns an empty Result,
// or an explicit nil value for its key.
type Result map[string]any

// Agent is a single unit of extraction. Implementations must be
// call-independent: one Agent value may serve many concurrent pipeline runs,
// so any state it holds beyond configuration must be externally synchronized.
type Agent interface {
	// Name returns a stable, non-empty identifier, unique within one
	// orchestrator's agent list.
	Name() string

	// Run performs one bounded unit of work against the shared context.
	// The context is guaranteed to contain the "prompt" key; no other key
	// may be assumed. The only sanctioned error is a failed external call,
	// wrapped so errors.Is(err, ErrExternalDependency) holds.
	Run(ctx context.Context, c Context) (Result, error)
}

// FuncAgent is a straightforward in-process function agent.
type FuncAgent struct {
	name string
	fn   func(context.Context, Context) (Result, error)
}

// NewAgent helper to create an inline agent
func NewAgent(name string, fn func(context.Context, Context) (Result, error)) *FuncAgent {
	return &FuncAgent{name: name, fn: fn}
}

func (a *FuncAgent) Name() string {
	return a.name
}

func (a *FuncAgent) Run(ctx context.Context, c Context) (Result, error) {
	return a.fn(ctx, c)
}
