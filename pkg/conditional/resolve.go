package conditional

import (
	"github.com/MarJC5/slabs/pkg/schema"
)

type resolveState uint8

const (
	stateUnseen resolveState = iota
	stateVisiting
	stateDone
)

// Resolve computes the visibility of every field in fields given the sibling
// values. Chains cascade fully: a field whose watched sibling is hidden sees
// that sibling's value as nil. A rule watching a name that is not part of
// fields hides the field. When rules form a cycle the edge that closes the
// cycle is treated as visible, so cycles fail open.
func Resolve(fields schema.Fields, values map[string]any) map[string]bool {
	r := resolver{
		fields:  fields,
		values:  values,
		state:   make(map[string]resolveState, fields.Len()),
		visible: make(map[string]bool, fields.Len()),
	}
	for _, name := range fields.Names() {
		r.resolve(name)
	}
	return r.visible
}

// Visible resolves a single field.
func Visible(fields schema.Fields, values map[string]any, name string) bool {
	visible, ok := Resolve(fields, values)[name]
	return !ok || visible
}

type resolver struct {
	fields  schema.Fields
	values  map[string]any
	state   map[string]resolveState
	visible map[string]bool
}

func (r *resolver) resolve(name string) bool {
	switch r.state[name] {
	case stateDone:
		return r.visible[name]
	case stateVisiting:
		return true
	}

	cfg, ok := r.fields.Get(name)
	if !ok {
		return false
	}
	cond := cfg.Conditional
	if cond == nil {
		r.state[name] = stateDone
		r.visible[name] = true
		return true
	}

	r.state[name] = stateVisiting
	result := false
	if r.fields.Has(cond.Field) {
		var watched any
		if r.resolve(cond.Field) {
			watched = r.values[cond.Field]
		}
		result = Evaluate(cond, watched)
	}
	r.state[name] = stateDone
	r.visible[name] = result
	return result
}

// Index maps a watched field to the fields whose rules reference it.
type Index map[string][]string

// Dependents builds the watched → dependents index for fields, listing
// dependents in field order.
func Dependents(fields schema.Fields) Index {
	index := make(Index)
	for name, cfg := range fields.All() {
		if cfg.Conditional == nil || cfg.Conditional.Field == "" {
			continue
		}
		watched := cfg.Conditional.Field
		index[watched] = append(index[watched], name)
	}
	return index
}

// Affected returns every field whose visibility can change when name changes,
// following chains transitively in breadth-first order.
func (idx Index) Affected(name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range idx[current] {
			if seen[dependent] {
				continue
			}
			seen[dependent] = true
			out = append(out, dependent)
			queue = append(queue, dependent)
		}
	}
	return out
}
