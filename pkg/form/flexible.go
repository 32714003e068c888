package form

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// LayoutKey names the layout of a flexible row inside its value map.
const LayoutKey = "_layout"

// Flexible holds rows that each pick one of the named layouts in cfg.Layouts.
// A row value is the layout's field values plus LayoutKey.
type Flexible struct {
	nested nestedEngine
}

// NewFlexible builds a flexible handler. Options configure its nested engine.
func NewFlexible(opts ...Option) *Flexible {
	return &Flexible{nested: nestedEngine{opts: opts, exclude: []string{TypeFlexible}}}
}

func (f *Flexible) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	engine := f.nested.get()
	set := newRowSet(TypeFlexible, name, cfg, engine)
	set.build = func(s *rowSet, layoutName string, values map[string]any) (*ui.Node, error) {
		layout, ok := s.cfg.Layouts.Get(layoutName)
		if !ok {
			placeholder := ui.El("div", "class", "slabs-flexible__unknown", attrUnknownLayout, layoutName, "role", "alert")
			placeholder.Text = fmt.Sprintf("Unknown layout %q", layoutName)
			placeholder.Data = maps.Clone(values)
			return placeholder, nil
		}
		return s.engine.Render(layout.Fields, values, asNestedRoot())
	}
	set.title = func(s *rowSet, row *ui.Node, index int) string {
		if layout, ok := s.cfg.Layouts.Get(row.AttrValue(AttrLayout)); ok {
			return layout.LabelText()
		}
		return validation.RowLabel(s.cfg.LabelFor(s.name), index)
	}

	picker := ui.El("select", attrLayoutPicker, "", "aria-label", "Layout")
	for i, layout := range cfg.Layouts {
		option := ui.El("option", "value", layout.Name)
		option.Text = layout.LabelText()
		option.Selected = i == 0
		picker.Append(option)
	}
	if len(cfg.Layouts) > 0 {
		picker.Value = cfg.Layouts[0].Name
	}
	picker.On(ui.EventChange, func(ev *ui.Event) {
		// The picker is not a field value; keep its changes away from the
		// form's visibility listeners.
		ev.StopPropagation()
	})
	buttonLabel := cfg.ButtonLabel
	if buttonLabel == "" {
		buttonLabel = "Add block"
	}
	set.add = actionButton(ActionAddLayout, buttonLabel)
	adder := ui.El("div", "class", "slabs-flexible__add")
	adder.Append(picker, set.add)
	set.control.Append(adder)

	rows, _ := coerce.Slice(value)
	for _, row := range rows {
		values, _ := coerce.Map(row)
		layout := coerce.String(values[LayoutKey])
		if _, err := set.appendRow(layout, values, false); err != nil {
			return nil, err
		}
	}
	set.restamp()
	return set.control, nil
}

func (f *Flexible) Extract(control *ui.Node) any {
	set, err := rowSetOf(control)
	if err != nil {
		return []any{}
	}
	out := make([]any, 0, len(set.rows()))
	for _, row := range set.rows() {
		layoutName := row.AttrValue(AttrLayout)
		layout, ok := set.cfg.Layouts.Get(layoutName)
		root := rowRoot(row)
		if !ok || root == nil {
			values := map[string]any{}
			if placeholder := row.Find(ui.ByAttr(attrUnknownLayout)); placeholder != nil {
				if raw, ok := placeholder.Data.(map[string]any); ok {
					values = maps.Clone(raw)
				}
			}
			values[LayoutKey] = layoutName
			out = append(out, values)
			continue
		}
		values, err := set.engine.Extract(root, layout.Fields)
		if err != nil {
			set.engine.logger.Warn("row extract failed", zap.String("field", set.name), zap.Error(err))
			values = map[string]any{}
		}
		values[LayoutKey] = layoutName
		out = append(out, values)
	}
	return out
}

func (f *Flexible) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
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
	engine := f.nested.get()
	for i, row := range rows {
		rowLabel := validation.RowLabel(label, i)
		values, ok := coerce.Map(row)
		if !ok {
			errs = append(errs, validation.New(rowLabel, validation.CodeInvalidType, rowLabel+" must be an object"))
			continue
		}
		layoutName := coerce.String(values[LayoutKey])
		layout, ok := cfg.Layouts.Get(layoutName)
		if !ok {
			errs = append(errs, validation.New(rowLabel, validation.CodeUnknownLayout,
				fmt.Sprintf("%s uses an unknown layout %q", rowLabel, layoutName)))
			continue
		}
		result, err := engine.Validate(layout.Fields, values)
		if err != nil {
			errs = append(errs, validation.New(rowLabel, validation.CodeInvalidType, err.Error()))
			continue
		}
		errs = append(errs, validation.Nest(rowLabel, result.Errors)...)
	}
	return errs
}

func (f *Flexible) CheckConfig(cfg schema.FieldConfig) error {
	if len(cfg.Layouts) == 0 {
		return fmt.Errorf("form: flexible requires layouts")
	}
	if cfg.Min != nil && cfg.Max != nil && *cfg.Min > *cfg.Max {
		return fmt.Errorf("form: flexible min %s exceeds max %s", formatBound(*cfg.Min), formatBound(*cfg.Max))
	}
	engine := f.nested.get()
	for _, layout := range cfg.Layouts {
		if layout.Fields.Has(LayoutKey) {
			return fmt.Errorf("form: layout %q must not define a %q field", layout.Name, LayoutKey)
		}
		if err := engine.Check(layout.Fields); err != nil {
			return fmt.Errorf("form: layout %q: %w", layout.Name, err)
		}
	}
	return nil
}

func (f *Flexible) Kind(schema.FieldConfig) fields.Kind { return fields.KindComposite }
