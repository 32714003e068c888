package form

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/conditional"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
)

// Extract reads a value map out of a rendered tree.
//
// The first pass asks each field's handler, selected by the data-field-type
// discriminator, for the value of every wrapper that is not nested inside
// another wrapper. When defs is non-empty a second pass recomputes visibility
// from the extracted values and sets hidden fields to nil, regardless of what
// their controls hold. The result never depends on display state, so
// extracting twice from an unchanged tree yields equal maps.
func (e *Engine) Extract(root *ui.Node, defs schema.Fields) (map[string]any, error) {
	if root == nil {
		return nil, fmt.Errorf("form: extract: root is nil")
	}
	values := make(map[string]any)
	for _, wrapper := range fieldWrappers(root) {
		name := wrapper.AttrValue(AttrFieldName)
		typ := wrapper.AttrValue(AttrFieldType)
		handler, err := e.registry.Get(typ)
		if err != nil {
			return nil, fmt.Errorf("form: extract field %q: %w", name, err)
		}
		values[name] = e.extractField(handler, name, wrapper)
	}

	if defs.Len() == 0 {
		return values, nil
	}
	for name, visible := range conditional.Resolve(defs, values) {
		if !visible {
			values[name] = nil
		}
	}
	return values, nil
}

// extractRaw runs the first pass only, skipping wrappers whose type does not
// resolve. It feeds live visibility updates.
func (e *Engine) extractRaw(root *ui.Node) map[string]any {
	values := make(map[string]any)
	for _, wrapper := range fieldWrappers(root) {
		name := wrapper.AttrValue(AttrFieldName)
		handler, err := e.registry.Get(wrapper.AttrValue(AttrFieldType))
		if err != nil {
			continue
		}
		values[name] = e.extractField(handler, name, wrapper)
	}
	return values
}

func (e *Engine) extractField(handler fields.Handler, name string, wrapper *ui.Node) (value any) {
	control := fieldControl(wrapper)
	if control == nil || control.HasAttr(AttrRenderError) {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("field extract failed", zap.String("field", name), zap.Any("panic", r))
			value = nil
		}
	}()
	return handler.Extract(control)
}

// fieldWrappers lists the wrappers owned by root in document order, without
// descending into wrappers (and therefore into nested composite roots).
func fieldWrappers(root *ui.Node) []*ui.Node {
	var out []*ui.Node
	root.Walk(func(n *ui.Node) bool {
		if n == root {
			return true
		}
		if n.HasAttr(AttrFieldName) {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func fieldControl(wrapper *ui.Node) *ui.Node {
	controls := wrapper.FindChildren(ui.ByAttr(AttrFieldControl))
	if len(controls) == 0 {
		return nil
	}
	return controls[0]
}

// FieldWrapper returns the wrapper of the top-level field called name.
func FieldWrapper(root *ui.Node, name string) *ui.Node {
	return wrapperByName(root, name)
}

// FieldControl returns the control subtree of the top-level field called name.
func FieldControl(root *ui.Node, name string) *ui.Node {
	wrapper := wrapperByName(root, name)
	if wrapper == nil {
		return nil
	}
	return fieldControl(wrapper)
}

// Schema returns the field definitions a root was rendered from.
func Schema(root *ui.Node) (schema.Fields, bool) {
	state, ok := root.Data.(*formState)
	if !ok {
		return schema.Fields{}, false
	}
	return state.defs, true
}

// ApplyVisibility recomputes visibility from the tree's current values and
// toggles every wrapper accordingly, without fade markers. Use it after
// changing control values programmatically without dispatching events.
func (e *Engine) ApplyVisibility(root *ui.Node, defs schema.Fields) map[string]bool {
	visible := conditional.Resolve(defs, e.extractRaw(root))
	for _, wrapper := range fieldWrappers(root) {
		name := wrapper.AttrValue(AttrFieldName)
		if v, ok := visible[name]; ok {
			wrapper.SetHidden(!v, false)
		}
	}
	return visible
}
