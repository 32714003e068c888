// Package fields defines field-type handlers and the registry that maps a
// schema type name to its handler.
package fields

import (
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Built-in leaf type names.
const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeEmail    = "email"
	TypeURL      = "url"
	TypeNumber   = "number"
	TypeRange    = "range"
	TypeSelect   = "select"
	TypeRadio    = "radio"
	TypeCheckbox = "checkbox"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeTime     = "time"
	TypeColor    = "color"
	TypeWysiwyg  = "wysiwyg"
	TypeHidden   = "hidden"
)

// Handler materialises, reads back and validates one kind of field.
//
// Render returns the control subtree for the field; the caller wraps it with
// label, description and error slot. Extract receives that same control
// subtree and returns the normalised value. Validate never fails: data errors
// are returned as values.
type Handler interface {
	Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error)
	Extract(control *ui.Node) any
	Validate(label string, cfg schema.FieldConfig, value any) []validation.Error
}

// ConfigChecker is implemented by handlers that can detect authoring errors in
// their configuration before anything is rendered.
type ConfigChecker interface {
	CheckConfig(cfg schema.FieldConfig) error
}

// Kind groups handlers by the interaction they need, which lets non-visual
// front ends (the terminal prompt, the OpenAPI importer) treat custom types
// sensibly.
type Kind string

const (
	KindText        Kind = "text"
	KindLongText    Kind = "long_text"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindChoice      Kind = "choice"
	KindMultiChoice Kind = "multi_choice"
	KindHidden      Kind = "hidden"
	KindComposite   Kind = "composite"
)

// Kinded reports the interaction kind of a handler for a given config.
type Kinded interface {
	Kind(cfg schema.FieldConfig) Kind
}

// KindOf returns the handler kind, defaulting to KindText.
func KindOf(h Handler, cfg schema.FieldConfig) Kind {
	if k, ok := h.(Kinded); ok {
		return k.Kind(cfg)
	}
	return KindText
}
