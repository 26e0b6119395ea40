package tools

import (
	"context"
	"fmt"
)

// ParamType is the closed set of JSON-schema-compatible parameter types.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

var validParamTypes = map[ParamType]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeInteger: true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
}

// Parameter declares a single named input of a tool.
type Parameter struct {
	Name        string
	Type        ParamType
	Required    bool
	Default     interface{}
	Description string
}

// HandlerFunc is the function signature for tool handlers. Arguments have
// already been validated against the tool's parameter list when called.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Descriptor is the registry's unit of registration: a named, categorized
// capability with a declared parameter list and a handler.
type Descriptor struct {
	Name        string
	Description string
	Category    string
	Parameters  []Parameter
	Handler     HandlerFunc
	Enabled     bool
}

// New creates an enabled descriptor.
func New(name, description, category string, params []Parameter, handler HandlerFunc) *Descriptor {
	return &Descriptor{
		Name:        name,
		Description: description,
		Category:    category,
		Parameters:  params,
		Handler:     handler,
		Enabled:     true,
	}
}

// snapshot returns a copy that is safe to read outside the registry lock.
// The parameter slice is shared; parameters are immutable once registered.
func (d *Descriptor) snapshot() *Descriptor {
	c := *d
	return &c
}

// Validate checks the structural invariants a descriptor must satisfy
// before it may enter the registry.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if d.Description == "" {
		return fmt.Errorf("tool %s: description is required", d.Name)
	}
	if d.Category == "" {
		return fmt.Errorf("tool %s: category is required", d.Name)
	}
	if d.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", d.Name)
	}

	seen := make(map[string]bool, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("tool %s: parameter name is required", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %s: duplicate parameter %q", d.Name, p.Name)
		}
		seen[p.Name] = true
		if !validParamTypes[p.Type] {
			return fmt.Errorf("tool %s: parameter %q has invalid type %q", d.Name, p.Name, p.Type)
		}
		if p.Required && p.Default != nil {
			return fmt.Errorf("tool %s: parameter %q cannot be required and carry a default", d.Name, p.Name)
		}
		if p.Default != nil {
			if err := checkType(p.Type, p.Default); err != nil {
				return fmt.Errorf("tool %s: parameter %q default: %w", d.Name, p.Name, err)
			}
		}
	}

	return nil
}

// checkType verifies that a value decoded from JSON matches the declared
// parameter type. Matching is strict: no cross-type coercion except that
// integer accepts a float64 with a whole value, since encoding/json decodes
// all JSON numbers as float64.
func checkType(pt ParamType, v interface{}) error {
	switch pt {
	case TypeString:
		if _, ok := v.(string); ok {
			return nil
		}
	case TypeNumber:
		switch v.(type) {
		case float64, float32, int, int32, int64:
			return nil
		}
	case TypeInteger:
		switch n := v.(type) {
		case int, int32, int64:
			return nil
		case float64:
			if n == float64(int64(n)) {
				return nil
			}
		}
	case TypeBoolean:
		if _, ok := v.(bool); ok {
			return nil
		}
	case TypeArray:
		if _, ok := v.([]interface{}); ok {
			return nil
		}
	case TypeObject:
		if _, ok := v.(map[string]interface{}); ok {
			return nil
		}
	}
	return fmt.Errorf("expected %s, got %T", pt, v)
}
