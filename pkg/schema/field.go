// Package schema defines the declarative field schema consumed by the form
// engine: field configurations, conditional visibility rules and the ordered
// field map that keeps authoring order stable across render and validation.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MarJC5/slabs/internal/coerce"
)

// FieldConfig describes a single field. Type selects the handler in the
// registry active at the field's nesting level; the remaining attributes are
// interpreted by that handler.
type FieldConfig struct {
	Type         string       `json:"type" yaml:"type"`
	Label        string       `json:"label,omitempty" yaml:"label,omitempty"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder  string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required     bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Min          *float64     `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64     `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength    *int         `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    *int         `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern      string       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Step         *float64     `json:"step,omitempty" yaml:"step,omitempty"`
	DefaultValue any          `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Options      []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	Multiple     bool         `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Fields       Fields       `json:"fields,omitzero" yaml:"fields,omitempty"`
	Layouts      Layouts      `json:"layouts,omitempty" yaml:"layouts,omitempty"`
	Tabs         []Tab        `json:"tabs,omitempty" yaml:"tabs,omitempty"`
	ButtonLabel  string       `json:"buttonLabel,omitempty" yaml:"buttonLabel,omitempty"`
	Collapsed    bool         `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Rows         int          `json:"rows,omitempty" yaml:"rows,omitempty"`
	ClassName    string       `json:"className,omitempty" yaml:"className,omitempty"`
	Conditional  *Conditional `json:"conditional,omitempty" yaml:"conditional,omitempty"`
}

// LabelFor returns the configured label or one derived from the field name.
func (c FieldConfig) LabelFor(name string) string {
	if label := strings.TrimSpace(c.Label); label != "" {
		return label
	}
	return DefaultLabeler(name)
}

// Conditional shows a field only while the watched sibling satisfies
// Operator against Value.
type Conditional struct {
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Option is a choice for select, radio and checkbox fields. Authors may write
// plain strings, which become options whose label equals the value.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Text returns the option label, falling back to its value.
func (o Option) Text() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

type optionFile struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// UnmarshalJSON accepts "value" or {"value": ..., "label": ...}.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: option: %w", err)
	}
	if m, ok := raw.(map[string]any); ok {
		o.Value = coerce.String(m["value"])
		o.Label = coerce.String(m["label"])
		return nil
	}
	o.Value = coerce.String(raw)
	o.Label = ""
	return nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var file optionFile
		if err := node.Decode(&file); err != nil {
			return fmt.Errorf("schema: option: %w", err)
		}
		o.Value = coerce.String(file.Value)
		o.Label = file.Label
		return nil
	}
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("schema: option: %w", err)
	}
	o.Value = coerce.String(raw)
	o.Label = ""
	return nil
}

// Tab is one panel of a tabs field.
type Tab struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Fields Fields `json:"fields,omitzero" yaml:"fields,omitempty"`
}

// LabelText returns the tab label or one derived from its name.
func (t Tab) LabelText() string {
	if t.Label != "" {
		return t.Label
	}
	return DefaultLabeler(t.Name)
}

// Layout is one named branch of a flexible field.
type Layout struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Fields Fields `json:"fields,omitzero" yaml:"fields,omitempty"`
}

// LabelText returns the layout label or one derived from its name.
func (l Layout) LabelText() string {
	if l.Label != "" {
		return l.Label
	}
	return DefaultLabeler(l.Name)
}
