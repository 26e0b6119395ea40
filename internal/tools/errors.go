package tools

import (
	"fmt"
	"strings"

	"helios/internal/adapters/broker"
	"helios/pkg/errors"
)

// Registry-level sentinels. Callers match these with errors.Is.
var (
	ErrDuplicateTool = errors.New("tool already registered")
	ErrToolNotFound  = errors.New("tool not found")
	ErrToolDisabled  = errors.New("tool is disabled")
)

// InvalidParametersError reports every argument problem found during
// validation, not just the first one. The handler is never invoked when
// this error is returned.
type InvalidParametersError struct {
	Tool     string
	Problems []string
}

// Error implements the error interface.
func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("tool %s: invalid parameters: %s", e.Tool, strings.Join(e.Problems, "; "))
}

// Is matches the generic invalid-input sentinel.
func (e *InvalidParametersError) Is(target error) bool {
	return target == errors.ErrInvalidInput
}

// ExecutionError is the uniform failure shape for handler errors and
// panics. Category comes from the broker taxonomy so the agent layer can
// fold a stable code back into the model's context.
type ExecutionError struct {
	Tool     string
	Category broker.Category
	Err      error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s: execution failed (%s): %v", e.Tool, e.Category, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// normalizeExecutionError wraps any handler failure into an ExecutionError,
// classifying it via the broker taxonomy. Already-normalized errors pass
// through unchanged.
func normalizeExecutionError(tool string, err error) *ExecutionError {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}
	return &ExecutionError{
		Tool:     tool,
		Category: broker.CategoryOf(err),
		Err:      err,
	}
}
