package form

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Composite type names.
const (
	TypeRepeater = "repeater"
	TypeRepeated = "repeated"
	TypeFlexible = "flexible"
	TypeGroup    = "group"
	TypeTabs     = "tabs"
)

// Repeater holds a list of rows sharing one sub-schema (cfg.Fields). Min and
// Max bound the number of rows. Its value is a list of row maps.
type Repeater struct {
	nested nestedEngine
}

// NewRepeater builds a repeater handler. Options configure its nested engine.
func NewRepeater(opts ...Option) *Repeater {
	return &Repeater{nested: nestedEngine{opts: opts, exclude: []string{TypeRepeater, TypeRepeated}}}
}

func (r *Repeater) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	engine := r.nested.get()
	set := newRowSet(TypeRepeater, name, cfg, engine)
	set.build = func(s *rowSet, _ string, values map[string]any) (*ui.Node, error) {
		return s.engine.Render(s.cfg.Fields, values, asNestedRoot())
	}
	label := cfg.LabelFor(name)
	set.title = func(_ *rowSet, _ *ui.Node, index int) string {
		return validation.RowLabel(label, index)
	}

	buttonLabel := cfg.ButtonLabel
	if buttonLabel == "" {
		buttonLabel = "Add row"
	}
	set.add = actionButton(ActionAddRow, buttonLabel)
	set.control.Append(set.add)

	rows, _ := coerce.Slice(value)
	for _, row := range rows {
		values, _ := coerce.Map(row)
		if _, err := set.appendRow("", values, false); err != nil {
			return nil, err
		}
	}
	set.restamp()
	return set.control, nil
}

func (r *Repeater) Extract(control *ui.Node) any {
	set, err := rowSetOf(control)
	if err != nil {
		return []any{}
	}
	out := make([]any, 0, len(set.rows()))
	for _, row := range set.rows() {
		root := rowRoot(row)
		if root == nil {
			out = append(out, map[string]any{})
			continue
		}
		values, err := set.engine.Extract(root, set.cfg.Fields)
		if err != nil {
			set.engine.logger.Warn("row extract failed", zap.String("field", set.name), zap.Error(err))
			values = map[string]any{}
		}
		out = append(out, values)
	}
	return out
}

func (r *Repeater) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	var rows []any
	if value != nil {
		items, ok := coerce.Slice(value)
		if !ok {
			return []validation.Error{validation.New(label, validation.CodeInvalidType, label+" must be a list of rows")}
		}
		rows = items
	}

	errs := rowCountRules(label, cfg, len(rows))
	if len(rows) == 0 {
		return errs
	}
	engine := r.nested.get()
	for i, row := range rows {
		rowLabel := validation.RowLabel(label, i)
		values, ok := coerce.Map(row)
		if !ok {
			errs = append(errs, validation.New(rowLabel, validation.CodeInvalidType, rowLabel+" must be an object"))
			continue
		}
		result, err := engine.Validate(cfg.Fields, values)
		if err != nil {
			errs = append(errs, validation.New(rowLabel, validation.CodeInvalidType, err.Error()))
			continue
		}
		errs = append(errs, validation.Nest(rowLabel, result.Errors)...)
	}
	return errs
}

func (r *Repeater) CheckConfig(cfg schema.FieldConfig) error {
	if cfg.Fields.Len() == 0 {
		return fmt.Errorf("form: repeater requires fields")
	}
	if cfg.Min != nil && cfg.Max != nil && *cfg.Min > *cfg.Max {
		return fmt.Errorf("form: repeater min %s exceeds max %s", formatBound(*cfg.Min), formatBound(*cfg.Max))
	}
	return r.nested.get().Check(cfg.Fields)
}

func (r *Repeater) Kind(schema.FieldConfig) fields.Kind { return fields.KindComposite }
