package fields

import (
	"strings"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Select renders a <select>. With cfg.Multiple the value is a list.
type Select struct{}

// NewSelect returns the select handler.
func NewSelect() *Select { return &Select{} }

func (Select) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	sel := ui.El("select", "name", name)
	if cfg.Required {
		sel.SetAttr("required", "")
	}
	selected := selectedSet(value)
	if cfg.Multiple {
		sel.SetAttr("multiple", "")
	} else {
		placeholder := cfg.Placeholder
		if placeholder == "" {
			placeholder = "Select…"
		}
		empty := ui.El("option", "value", "")
		empty.Text = placeholder
		empty.Selected = len(selected) == 0
		sel.Append(empty)
	}
	for _, opt := range cfg.Options {
		option := ui.El("option", "value", opt.Value)
		option.Text = opt.Text()
		option.Selected = selected[opt.Value]
		if option.Selected && sel.Value == "" {
			sel.Value = opt.Value
		}
		sel.Append(option)
	}
	return sel, nil
}

func (Select) Extract(control *ui.Node) any {
	sel := control
	if sel.Tag != "select" {
		sel = control.Find(ui.ByTag("select"))
	}
	if sel == nil {
		return nil
	}
	var values []any
	for _, option := range sel.FindAll(ui.ByTag("option")) {
		if option.Selected && option.AttrValue("value") != "" {
			values = append(values, option.AttrValue("value"))
		}
	}
	if sel.HasAttr("multiple") {
		if values == nil {
			return []any{}
		}
		return values
	}
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (Select) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	if cfg.Multiple {
		return multiChoiceRules(label, cfg, value)
	}
	return singleChoiceRules(label, cfg, value)
}

func (Select) Kind(cfg schema.FieldConfig) Kind {
	if cfg.Multiple {
		return KindMultiChoice
	}
	return KindChoice
}

// Radio renders one radio input per option.
type Radio struct{}

// NewRadio returns the radio handler.
func NewRadio() *Radio { return &Radio{} }

func (Radio) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	group := ui.El("div", "role", "radiogroup", "class", "slabs-choices")
	current := coerce.String(value)
	for _, opt := range cfg.Options {
		input := ui.El("input", "type", "radio", "name", name, "value", opt.Value)
		input.Checked = current != "" && opt.Value == current
		label := ui.El("label", "class", "slabs-choice")
		label.Append(input, ui.TextNode("span", opt.Text()))
		group.Append(label)
	}
	return group, nil
}

func (Radio) Extract(control *ui.Node) any {
	for _, input := range control.FindAll(ui.ByAttrValue("type", "radio")) {
		if input.Checked {
			return input.AttrValue("value")
		}
	}
	return ""
}

func (Radio) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	return singleChoiceRules(label, cfg, value)
}

func (Radio) Kind(schema.FieldConfig) Kind { return KindChoice }

// Checkbox renders a checkbox per option; its value is the list of checked
// option values.
type Checkbox struct{}

// NewCheckbox returns the multi-choice checkbox handler.
func NewCheckbox() *Checkbox { return &Checkbox{} }

func (Checkbox) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	group := ui.El("div", "role", "group", "class", "slabs-choices")
	selected := selectedSet(value)
	for _, opt := range cfg.Options {
		input := ui.El("input", "type", "checkbox", "name", name+"[]", "value", opt.Value)
		input.Checked = selected[opt.Value]
		label := ui.El("label", "class", "slabs-choice")
		label.Append(input, ui.TextNode("span", opt.Text()))
		group.Append(label)
	}
	return group, nil
}

func (Checkbox) Extract(control *ui.Node) any {
	values := []any{}
	for _, input := range control.FindAll(ui.ByAttrValue("type", "checkbox")) {
		if input.Checked {
			values = append(values, input.AttrValue("value"))
		}
	}
	return values
}

func (Checkbox) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	return multiChoiceRules(label, cfg, value)
}

func (Checkbox) Kind(schema.FieldConfig) Kind { return KindMultiChoice }

func selectedSet(value any) map[string]bool {
	out := make(map[string]bool)
	if value == nil {
		return out
	}
	if items, ok := coerce.Slice(value); ok {
		for _, item := range items {
			if s := coerce.String(item); s != "" {
				out[s] = true
			}
		}
		return out
	}
	if s := coerce.String(value); s != "" {
		out[s] = true
	}
	return out
}

func optionAllowed(cfg schema.FieldConfig, value string) bool {
	if len(cfg.Options) == 0 {
		return true
	}
	for _, opt := range cfg.Options {
		if strings.EqualFold(opt.Value, value) {
			return true
		}
	}
	return false
}

func invalidOption(label string) validation.Error {
	return validation.New(label, validation.CodeInvalidOption, label+" contains an invalid option")
}

func singleChoiceRules(label string, cfg schema.FieldConfig, value any) []validation.Error {
	if coerce.Empty(value) {
		if cfg.Required {
			return []validation.Error{requiredError(label)}
		}
		return nil
	}
	text, ok := stringValue(value)
	if !ok {
		return invalidType(label)
	}
	if !optionAllowed(cfg, text) {
		return []validation.Error{invalidOption(label)}
	}
	return nil
}

func multiChoiceRules(label string, cfg schema.FieldConfig, value any) []validation.Error {
	if coerce.Empty(value) {
		if cfg.Required {
			return []validation.Error{requiredError(label)}
		}
		return nil
	}
	items, ok := coerce.Slice(value)
	if !ok {
		items = []any{value}
	}
	for _, item := range items {
		text, ok := stringValue(item)
		if !ok {
			return invalidType(label)
		}
		if !optionAllowed(cfg, text) {
			return []validation.Error{invalidOption(label)}
		}
	}
	var errs []validation.Error
	if cfg.Min != nil && float64(len(items)) < *cfg.Min {
		errs = append(errs, validation.New(label, validation.CodeMin,
			label+" needs at least "+formatFloat(*cfg.Min)+" selections"))
	}
	if cfg.Max != nil && float64(len(items)) > *cfg.Max {
		errs = append(errs, validation.New(label, validation.CodeMax,
			label+" allows at most "+formatFloat(*cfg.Max)+" selections"))
	}
	return errs
}
