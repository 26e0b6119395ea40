package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"helios/internal/adapters/broker"
	"helios/internal/metrics"
	"helios/pkg/errors"
	"helios/pkg/logger"
)

// Registry stores tool descriptors by name for discovery, schema export
// and validated execution. Listings preserve registration order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	order  []string
	log    *logger.Logger
}

// NewRegistry constructs an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Descriptor),
		log:    logger.Get().With("component", "tool_registry"),
	}
}

// Register validates a descriptor and adds it under its name.
// Registering a name twice fails with ErrDuplicateTool; the registry
// never silently replaces.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil descriptor")
	}
	if err := d.Validate(); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
	}

	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	r.log.Debugw("Registered tool", "name", d.Name, "category", d.Category)
	return nil
}

// Get retrieves a descriptor by name. The returned value is a copy;
// mutating it does not affect the registry.
func (r *Registry) Get(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return d.snapshot(), nil
}

// SetEnabled toggles a tool's availability without unregistering it.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	d.Enabled = enabled
	return nil
}

// List returns all descriptors in registration order, including disabled
// ones. The returned descriptors are copies.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].snapshot())
	}
	return out
}

// ListByCategory returns enabled descriptors in the given category,
// preserving registration order.
func (r *Registry) ListByCategory(category string) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Descriptor
	for _, name := range r.order {
		d := r.byName[name]
		if d.Enabled && d.Category == category {
			out = append(out, d.snapshot())
		}
	}
	return out
}

// Categories returns the distinct categories of enabled tools, in first-seen
// registration order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, name := range r.order {
		d := r.byName[name]
		if d.Enabled && !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}

// Execute validates args against the named tool's parameter list and runs
// its handler. Validation is strict: missing required parameters, values of
// the wrong type and unknown keys all reject the call before the handler
// runs. Defaults for absent optional parameters are filled in. Handler
// failures and panics come back as *ExecutionError.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (result interface{}, err error) {
	r.mu.RLock()
	live, ok := r.byName[name]
	var d *Descriptor
	if ok {
		d = live.snapshot()
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if !d.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrToolDisabled, name)
	}

	resolved, verr := validateArgs(d, args)
	if verr != nil {
		metrics.RecordToolExecution(name, "invalid_params", 0)
		return nil, verr
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorw("Tool handler panicked", "tool", name, "panic", rec)
			err = &ExecutionError{
				Tool:     name,
				Category: broker.CategoryUnknown,
				Err:      fmt.Errorf("panic: %v", rec),
			}
			metrics.RecordToolExecution(name, "panic", time.Since(start))
		}
	}()

	result, err = d.Handler(ctx, resolved)
	elapsed := time.Since(start)
	if err != nil {
		execErr := normalizeExecutionError(name, err)
		r.log.Warnw("Tool execution failed", "tool", name, "category", execErr.Category, "error", err)
		metrics.RecordToolExecution(name, string(execErr.Category), elapsed)
		return nil, execErr
	}

	metrics.RecordToolExecution(name, "ok", elapsed)
	return result, nil
}

// validateArgs checks args against the declared parameters and returns a
// copy with defaults applied. All problems are collected before failing.
func validateArgs(d *Descriptor, args map[string]interface{}) (map[string]interface{}, error) {
	declared := make(map[string]Parameter, len(d.Parameters))
	for _, p := range d.Parameters {
		declared[p.Name] = p
	}

	var problems []string

	for key := range args {
		if _, ok := declared[key]; !ok {
			problems = append(problems, fmt.Sprintf("unknown parameter %q", key))
		}
	}

	resolved := make(map[string]interface{}, len(d.Parameters))
	for _, p := range d.Parameters {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Required {
				problems = append(problems, fmt.Sprintf("missing required parameter %q", p.Name))
				continue
			}
			if p.Default != nil {
				resolved[p.Name] = p.Default
			}
			continue
		}
		if err := checkType(p.Type, v); err != nil {
			problems = append(problems, fmt.Sprintf("parameter %q: %v", p.Name, err))
			continue
		}
		resolved[p.Name] = v
	}

	if len(problems) > 0 {
		return nil, &InvalidParametersError{Tool: d.Name, Problems: problems}
	}
	return resolved, nil
}
