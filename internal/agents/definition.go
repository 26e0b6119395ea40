package agents

import (
	"time"

	"helios/pkg/errors"
)

// Definition is a named analysis persona: a model, a system prompt and the
// subset of registry tools the agent may call.
type Definition struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	ToolNames    []string  `json:"tool_names"`
	Temperature  float64   `json:"temperature,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the structural invariants of a definition. Tool name
// resolution against the registry happens in the store.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.Wrap(errors.ErrInvalidInput, "agent name is required")
	}
	if d.Model == "" {
		return errors.Wrap(errors.ErrInvalidInput, "agent model is required")
	}
	if d.SystemPrompt == "" {
		return errors.Wrap(errors.ErrInvalidInput, "agent system prompt is required")
	}

	seen := make(map[string]bool, len(d.ToolNames))
	for _, name := range d.ToolNames {
		if name == "" {
			return errors.Wrap(errors.ErrInvalidInput, "agent tool names must not be empty")
		}
		if seen[name] {
			return errors.Wrapf(errors.ErrInvalidInput, "agent tool %q listed twice", name)
		}
		seen[name] = true
	}

	return nil
}

// AllowsTool reports whether the definition grants access to a tool.
func (d *Definition) AllowsTool(name string) bool {
	for _, t := range d.ToolNames {
		if t == name {
			return true
		}
	}
	return false
}

// clone returns a deep copy so store callers cannot mutate stored state.
func (d *Definition) clone() *Definition {
	cp := *d
	cp.ToolNames = append([]string(nil), d.ToolNames...)
	return &cp
}
