package fields

import (
	"strings"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Boolean renders a single checkbox. A required boolean must be checked.
type Boolean struct{}

// NewBoolean returns the boolean handler.
func NewBoolean() *Boolean { return &Boolean{} }

func (Boolean) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	input := ui.El("input", "type", "checkbox", "name", name, "value", "1", "role", "switch")
	if cfg.Required {
		input.SetAttr("required", "")
	}
	input.Checked = boolValue(value)
	return input, nil
}

func (Boolean) Extract(control *ui.Node) any {
	input := control
	if input.Tag != "input" {
		input = control.Find(ui.ByAttrValue("type", "checkbox"))
	}
	if input == nil {
		return false
	}
	return input.Checked
}

func (Boolean) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	switch v := value.(type) {
	case nil:
	case bool:
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "true", "false", "1", "0", "on", "off":
		default:
			return invalidType(label)
		}
	default:
		if !coerce.IsNumeric(v) {
			return invalidType(label)
		}
	}
	if cfg.Required && !boolValue(value) {
		return []validation.Error{requiredError(label)}
	}
	return nil
}

func (Boolean) Kind(schema.FieldConfig) Kind { return KindBoolean }

func boolValue(value any) bool {
	if s, ok := value.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on":
			return true
		case "off":
			return false
		}
	}
	return coerce.Bool(value)
}
