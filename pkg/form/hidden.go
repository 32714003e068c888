package form

import (
	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/conditional"
	"github.com/MarJC5/slabs/pkg/schema"
)

// hiddenClearer is implemented by composite handlers whose values hold
// nested fields with their own conditionals.
type hiddenClearer interface {
	clearHidden(cfg schema.FieldConfig, value any) any
}

// ClearHidden sets every field of values that is hidden by its conditional to
// nil, then descends into the values of visible composites and does the same
// for their nested fields, resolved against their own siblings. values is
// modified in place. The result matches what Extract returns for a rendered
// tree holding the same values.
func (e *Engine) ClearHidden(defs schema.Fields, values map[string]any) {
	if values == nil {
		return
	}
	visible := conditional.Resolve(defs, values)
	for name, cfg := range defs.All() {
		if !visible[name] {
			values[name] = nil
			continue
		}
		handler, err := e.registry.Get(cfg.Type)
		if err != nil {
			continue
		}
		if clearer, ok := handler.(hiddenClearer); ok && values[name] != nil {
			values[name] = clearer.clearHidden(cfg, values[name])
		}
	}
}

func (g *Group) clearHidden(cfg schema.FieldConfig, value any) any {
	values, ok := coerce.Map(value)
	if !ok {
		return value
	}
	g.nested.get().ClearHidden(cfg.Fields, values)
	return values
}

func (t *Tabs) clearHidden(cfg schema.FieldConfig, value any) any {
	values, ok := coerce.Map(value)
	if !ok {
		return value
	}
	engine := t.nested.get()
	for _, tab := range cfg.Tabs {
		tabValues, ok := coerce.Map(values[tab.Name])
		if !ok {
			continue
		}
		engine.ClearHidden(tab.Fields, tabValues)
		values[tab.Name] = tabValues
	}
	return values
}

func (r *Repeater) clearHidden(cfg schema.FieldConfig, value any) any {
	rows, ok := coerce.Slice(value)
	if !ok {
		return value
	}
	engine := r.nested.get()
	for i, row := range rows {
		values, ok := coerce.Map(row)
		if !ok {
			continue
		}
		engine.ClearHidden(cfg.Fields, values)
		rows[i] = values
	}
	return rows
}

func (f *Flexible) clearHidden(cfg schema.FieldConfig, value any) any {
	rows, ok := coerce.Slice(value)
	if !ok {
		return value
	}
	engine := f.nested.get()
	for i, row := range rows {
		values, ok := coerce.Map(row)
		if !ok {
			continue
		}
		layout, ok := cfg.Layouts.Get(coerce.String(values[LayoutKey]))
		if !ok {
			continue
		}
		engine.ClearHidden(layout.Fields, values)
		rows[i] = values
	}
	return rows
}
