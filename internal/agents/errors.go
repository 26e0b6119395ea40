package agents

import (
	"fmt"

	"helios/pkg/errors"
)

// Agent-layer sentinels. Callers match these with errors.Is.
var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrAgentExists      = errors.New("agent already exists")
	ErrModelUnavailable = errors.New("model unavailable")
)

// StaleToolReferenceError reports that an agent references a tool that has
// been disabled or is no longer registered. Raised when a run starts, not
// when the definition is stored.
type StaleToolReferenceError struct {
	Agent string
	Tool  string
}

// Error implements the error interface.
func (e *StaleToolReferenceError) Error() string {
	return fmt.Sprintf("agent %s: tool %q is no longer available", e.Agent, e.Tool)
}

// ModelUnavailableError reports that the model could not be reached after
// all retry attempts.
type ModelUnavailableError struct {
	Model    string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s unavailable after %d attempts: %v", e.Model, e.Attempts, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// Is matches the model-unavailable sentinel.
func (e *ModelUnavailableError) Is(target error) bool {
	return target == ErrModelUnavailable
}

// IterationLimitExceededError reports that a run hit the model round-trip
// bound without producing a final answer.
type IterationLimitExceededError struct {
	Agent string
	Limit int
}

// Error implements the error interface.
func (e *IterationLimitExceededError) Error() string {
	return fmt.Sprintf("agent %s: no final answer after %d iterations", e.Agent, e.Limit)
}
