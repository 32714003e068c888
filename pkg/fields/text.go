package fields

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Input renders a single <input> and reads back its trimmed value. InputType
// is the HTML input type; Format, when set, validates non-empty values.
type Input struct {
	InputType string
	Format    func(label string) func(string) *validation.Error
}

// NewText returns the handler for plain single-line text.
func NewText() *Input { return &Input{InputType: "text"} }

// NewEmail validates addresses with net/mail.
func NewEmail() *Input { return &Input{InputType: "email", Format: emailFormat} }

// NewURL accepts absolute http and https URLs.
func NewURL() *Input { return &Input{InputType: "url", Format: urlFormat} }

// NewDate accepts ISO dates (2006-01-02).
func NewDate() *Input {
	return &Input{InputType: "date", Format: func(label string) func(string) *validation.Error {
		return layoutFormat(label, " must be a valid date", "2006-01-02")
	}}
}

// NewTime accepts HH:MM and HH:MM:SS.
func NewTime() *Input {
	return &Input{InputType: "time", Format: func(label string) func(string) *validation.Error {
		return layoutFormat(label, " must be a valid time", "15:04", "15:04:05")
	}}
}

// NewColor accepts #rgb and #rrggbb.
func NewColor() *Input { return &Input{InputType: "color", Format: colorFormat} }

// NewHidden carries a value without any visible control or validation.
func NewHidden() *Input { return &Input{InputType: "hidden"} }

func (h *Input) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	input := ui.El("input", "type", h.InputType, "name", name)
	if h.InputType != "hidden" {
		applyTextAttrs(input, cfg)
	}
	input.Value = coerce.String(value)
	return input, nil
}

func (h *Input) Extract(control *ui.Node) any {
	input := control
	if input.Tag != "input" {
		input = control.Find(ui.ByTag("input"))
	}
	if input == nil {
		return nil
	}
	return strings.TrimSpace(input.Value)
}

func (h *Input) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	if h.InputType == "hidden" {
		return nil
	}
	text, ok := stringValue(value)
	if !ok {
		return invalidType(label)
	}
	var format func(string) *validation.Error
	if h.Format != nil {
		format = h.Format(label)
	}
	return textRules(label, cfg, text, format)
}

func (h *Input) CheckConfig(cfg schema.FieldConfig) error {
	return checkPattern(cfg)
}

func (h *Input) Kind(schema.FieldConfig) Kind {
	if h.InputType == "hidden" {
		return KindHidden
	}
	return KindText
}

// Textarea renders a multi-line text control.
type Textarea struct{}

// NewTextarea returns the textarea handler.
func NewTextarea() *Textarea { return &Textarea{} }

func (Textarea) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	area := ui.El("textarea", "name", name)
	applyTextAttrs(area, cfg)
	if cfg.Rows > 0 {
		area.SetAttr("rows", strconv.Itoa(cfg.Rows))
	}
	area.Value = coerce.String(value)
	return area, nil
}

func (Textarea) Extract(control *ui.Node) any {
	area := control
	if area.Tag != "textarea" {
		area = control.Find(ui.ByTag("textarea"))
	}
	if area == nil {
		return nil
	}
	return strings.TrimSpace(area.Value)
}

func (Textarea) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	text, ok := stringValue(value)
	if !ok {
		return invalidType(label)
	}
	return textRules(label, cfg, text, nil)
}

func (Textarea) CheckConfig(cfg schema.FieldConfig) error {
	return checkPattern(cfg)
}

func (Textarea) Kind(schema.FieldConfig) Kind { return KindLongText }

// Wysiwyg stores sanitised HTML. Length and required checks apply to the text
// content, not the markup.
type Wysiwyg struct{}

// NewWysiwyg returns the rich-text handler.
func NewWysiwyg() *Wysiwyg { return &Wysiwyg{} }

func (Wysiwyg) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	area := ui.El("textarea", "name", name, "data-editor", "wysiwyg")
	if cfg.Rows > 0 {
		area.SetAttr("rows", strconv.Itoa(cfg.Rows))
	}
	if cfg.Placeholder != "" {
		area.SetAttr("placeholder", cfg.Placeholder)
	}
	area.Value = SanitizeHTML(coerce.String(value))
	return area, nil
}

func (Wysiwyg) Extract(control *ui.Node) any {
	area := control
	if area.Tag != "textarea" {
		area = control.Find(ui.ByTag("textarea"))
	}
	if area == nil {
		return nil
	}
	return SanitizeHTML(area.Value)
}

func (Wysiwyg) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	markup, ok := stringValue(value)
	if !ok {
		return invalidType(label)
	}
	return textRules(label, cfg, StripHTML(markup), nil)
}

// CheckConfig rejects pattern: a regular expression over sanitised markup has
// no stable meaning, so rich-text fields do not support one.
func (Wysiwyg) CheckConfig(cfg schema.FieldConfig) error {
	if cfg.Pattern != "" {
		return fmt.Errorf("fields: wysiwyg does not support pattern %q", cfg.Pattern)
	}
	return nil
}

func (Wysiwyg) Kind(schema.FieldConfig) Kind { return KindLongText }

func applyTextAttrs(node *ui.Node, cfg schema.FieldConfig) {
	if cfg.Placeholder != "" {
		node.SetAttr("placeholder", cfg.Placeholder)
	}
	if cfg.Required {
		node.SetAttr("required", "")
	}
	if cfg.MinLength != nil {
		node.SetAttr("minlength", strconv.Itoa(*cfg.MinLength))
	}
	if cfg.MaxLength != nil {
		node.SetAttr("maxlength", strconv.Itoa(*cfg.MaxLength))
	}
	if cfg.Pattern != "" && node.Tag == "input" {
		node.SetAttr("pattern", cfg.Pattern)
	}
}
