package tools

import (
	"helios/internal/adapters/ai"
)

// ParameterSchema is the wire shape of a single parameter in an exported
// tool schema.
type ParameterSchema struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
	Description string      `json:"description,omitempty"`
}

// ToolSchema is the wire shape of an exported tool definition.
type ToolSchema struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Parameters  []ParameterSchema `json:"parameters"`
}

// ExportSchema returns the model-facing definitions of enabled tools.
// With no names given it exports every enabled tool in registration order;
// with names it exports exactly those tools, skipping unknown or disabled
// ones. The export is a snapshot and never mutates registry state.
func (r *Registry) ExportSchema(names ...string) []ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := r.order
	if len(names) > 0 {
		selected = names
	}

	out := make([]ToolSchema, 0, len(selected))
	for _, name := range selected {
		d, ok := r.byName[name]
		if !ok || !d.Enabled {
			continue
		}
		out = append(out, schemaOf(d))
	}
	return out
}

func schemaOf(d *Descriptor) ToolSchema {
	s := ToolSchema{
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Parameters:  make([]ParameterSchema, 0, len(d.Parameters)),
	}
	for _, p := range d.Parameters {
		s.Parameters = append(s.Parameters, ParameterSchema{
			Name:        p.Name,
			Type:        string(p.Type),
			Required:    p.Required,
			Default:     p.Default,
			Description: p.Description,
		})
	}
	return s
}

// AIDefinitions converts exported schemas into the JSON-schema tool
// definitions the chat provider expects.
func AIDefinitions(schemas []ToolSchema) []ai.ToolDefinition {
	defs := make([]ai.ToolDefinition, 0, len(schemas))
	for _, s := range schemas {
		properties := make(map[string]interface{}, len(s.Parameters))
		var required []string
		for _, p := range s.Parameters {
			prop := map[string]interface{}{
				"type": p.Type,
			}
			if p.Description != "" {
				prop["description"] = p.Description
			}
			if p.Default != nil {
				prop["default"] = p.Default
			}
			properties[p.Name] = prop
			if p.Required {
				required = append(required, p.Name)
			}
		}

		params := map[string]interface{}{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			params["required"] = required
		}

		defs = append(defs, ai.ToolDefinition{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  params,
		})
	}
	return defs
}
