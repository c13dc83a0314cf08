package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Orchestrator executes a fixed, ordered sequence of agents against one
// shared context per run. Sequencing is strict left-to-right: agent i+1
// always observes every key written by agents 0..i, so later agents may
// depend on earlier agents' outputs. The orchestrator holds no per-run
// state; concurrent Run calls are independent.
type Orchestrator struct {
	agents []Agent
	logger *slog.Logger
	trace  bool
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger used for run tracing
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithTracing enables per-agent execution tracing
func WithTracing() Option {
	return func(o *Orchestrator) {
		o.trace = true
	}
}

// New creates an orchestrator over the given agents, in order. The agent
// list is validated eagerly: a nil agent, an empty name, or a duplicate name
// is a *ConfigError. An empty list is legal and yields runs that return only
// the prompt.
func New(agents []Agent, opts ...Option) (*Orchestrator, error) {
	seen := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		if a == nil {
			return nil, &ConfigError{Err: ErrNilAgent}
		}
		name := a.Name()
		if name == "" {
			return nil, &ConfigError{Err: ErrEmptyAgentName}
		}
		if _, exists := seen[name]; exists {
			return nil, &ConfigError{Agent: name, Err: ErrDuplicateAgent}
		}
		seen[name] = struct{}{}
	}

	o := &Orchestrator{
		agents: append([]Agent(nil), agents...),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// AgentNames returns the names of the agents in execution order.
func (o *Orchestrator) AgentNames() []string {
	names := make([]string, len(o.agents))
	for i, a := range o.agents {
		names[i] = a.Name()
	}
	return names
}

// Run executes every agent in list order against a fresh context seeded with
// the prompt and returns the fully merged context. The first failing agent
// aborts the run: its error is returned wrapped in an *AgentError (the cause
// is preserved for errors.Is) and no later agent is invoked. No agent is
// skipped, retried, or reordered; retry belongs inside an individual agent.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (Context, error) {
	runID := uuid.New().String()
	c := NewContext(prompt)

	for i, agent := range o.agents {
		if err := ctx.Err(); err != nil {
			return c, errors.Wrapf(err, "run %s cancelled before agent %q", runID, agent.Name())
		}

		start := time.Now()
		result, err := agent.Run(ctx, c)
		if err != nil {
			o.traceAgent(ctx, runID, i, agent.Name(), StatusFailed, start, err)
			return c, &AgentError{Agent: agent.Name(), Err: err}
		}

		c.MergeResult(result)
		o.traceAgent(ctx, runID, i, agent.Name(), StatusCompleted, start, nil)
	}

	return c, nil
}

func (o *Orchestrator) traceAgent(
	ctx context.Context,
	runID string,
	step int,
	agent string,
	status AgentStatus,
	start time.Time,
	err error,
) {
	if !o.trace {
		return
	}

	attrs := []any{
		slog.String("run_id", runID),
		slog.Int("step", step),
		slog.String("agent", agent),
		slog.String("status", string(status)),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		o.logger.ErrorContext(ctx, "agent run failed", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "agent run completed", attrs...)
}
