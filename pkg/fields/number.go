package fields

import (
	"strconv"
	"strings"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Number renders a numeric input. Extraction yields float64, nil for an empty
// control, or the raw text when it does not parse so validation can report it.
type Number struct {
	InputType string
}

// NewNumber returns the handler for <input type="number">.
func NewNumber() *Number { return &Number{InputType: "number"} }

// NewRange returns the handler for slider controls.
func NewRange() *Number { return &Number{InputType: "range"} }

func (h *Number) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	input := ui.El("input", "type", h.InputType, "name", name)
	if cfg.Min != nil {
		input.SetAttr("min", formatFloat(*cfg.Min))
	}
	if cfg.Max != nil {
		input.SetAttr("max", formatFloat(*cfg.Max))
	}
	if cfg.Step != nil {
		input.SetAttr("step", formatFloat(*cfg.Step))
	}
	if cfg.Placeholder != "" && h.InputType == "number" {
		input.SetAttr("placeholder", cfg.Placeholder)
	}
	if cfg.Required {
		input.SetAttr("required", "")
	}
	input.Value = coerce.String(value)
	return input, nil
}

func (h *Number) Extract(control *ui.Node) any {
	input := control
	if input.Tag != "input" {
		input = control.Find(ui.ByTag("input"))
	}
	if input == nil {
		return nil
	}
	raw := strings.TrimSpace(input.Value)
	if raw == "" {
		return nil
	}
	parsed, ok := coerce.Number(raw)
	if !ok {
		return raw
	}
	return parsed
}

func (h *Number) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	if coerce.Empty(value) {
		if cfg.Required {
			return []validation.Error{requiredError(label)}
		}
		return nil
	}
	if _, ok := value.(bool); ok {
		return invalidType(label)
	}
	number, ok := coerce.Number(value)
	if !ok {
		return []validation.Error{validation.New(label, validation.CodeInvalidNumber, label+" must be a number")}
	}
	return rangeRules(label, cfg, number)
}

func (h *Number) Kind(schema.FieldConfig) Kind { return KindNumber }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
