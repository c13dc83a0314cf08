package pipeline

// PromptKey is the one key every Context carries from creation. Agents may
// rely on it being present; they must not overwrite it.
const PromptKey = "prompt"

// Context is the shared mutable mapping passed through one pipeline run.
// It is created fresh per Orchestrator.Run, accumulates every agent's
// contribution, and is discarded after the final result is returned. Keys
// are never deleted during a run, so once written a value is visible to all
// subsequently run agents.
type Context map[string]any

// NewContext creates a run context seeded with the original prompt.
func NewContext(prompt string) Context {
	return Context{PromptKey: prompt}
}

// Prompt returns the original input string, or "" if the key was
// overwritten with a non-string value.
func (c Context) Prompt() string {
	s, _ := c[PromptKey].(string)
	return s
}

// MergeResult applies a partial result to the context with last-write-wins
// semantics: every key of r is set, overwriting any existing value.
func (c Context) MergeResult(r Result) {
	for k, v := range r {
		c[k] = v
	}
}

// Clone creates a deep copy of the context.
func (c Context) Clone() Context {
	clone := make(Context, len(c))
	for k, v := range c {
		clone[k] = deepCopy(v)
	}
	return clone
}

// deepCopy performs a deep copy of an interface{}
func deepCopy(v any) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case map[string]any:
		newMap := make(map[string]any, len(val))
		for k, v := range val {
			newMap[k] = deepCopy(v)
		}
		return newMap
	case []any:
		newSlice := make([]any, len(val))
		for i, v := range val {
			newSlice[i] = deepCopy(v)
		}
		return newSlice
	case string, int, int64, float64, bool:
		return val // These are immutable, no need to copy
	default:
		// For other types, return as is if we know they're immutable
		return val
	}
}
