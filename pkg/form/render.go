package form

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/conditional"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
)

type renderConfig struct {
	className string
	tokens    map[string]string
	formID    string
	nested    bool
}

// RenderOption customises a single Render call.
type RenderOption func(*renderConfig)

// WithContainerClass adds a class to the render root.
func WithContainerClass(class string) RenderOption {
	return func(c *renderConfig) {
		c.className = strings.TrimSpace(strings.Join([]string{c.className, class}, " "))
	}
}

// WithThemeTokens exposes design tokens as CSS custom properties on the root,
// e.g. {"primary": "#123"} becomes style="--slabs-primary:#123".
func WithThemeTokens(tokens map[string]string) RenderOption {
	return func(c *renderConfig) {
		if len(tokens) == 0 {
			return
		}
		if c.tokens == nil {
			c.tokens = make(map[string]string, len(tokens))
		}
		for k, v := range tokens {
			c.tokens[k] = v
		}
	}
}

// WithFormID overrides the generated form identifier.
func WithFormID(id string) RenderOption {
	return func(c *renderConfig) {
		c.formID = strings.TrimSpace(id)
	}
}

func asNestedRoot() RenderOption {
	return func(c *renderConfig) {
		c.nested = true
	}
}

// formState is attached to every render root.
type formState struct {
	engine *Engine
	defs   schema.Fields
	index  conditional.Index
}

// Render materialises defs into a UI tree. Values come from data, falling
// back to each field's defaultValue. Fields hidden by their conditional start
// hidden, and when any field is watched the root listens for input and change
// events to keep visibility in sync.
//
// Configuration errors are returned. A handler that fails or panics while
// rendering is replaced by an error placeholder so the rest of the form
// still renders.
func (e *Engine) Render(defs schema.Fields, data map[string]any, opts ...RenderOption) (*ui.Node, error) {
	if err := e.Check(defs); err != nil {
		return nil, err
	}

	cfg := renderConfig{className: e.containerClass}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.formID == "" {
		cfg.formID = uuid.NewString()
	}

	root := ui.El("div", AttrForm, "", AttrFormID, cfg.formID)
	root.AddClass(DefaultContainerClass, cfg.className)
	if cfg.nested {
		root.SetAttr(AttrNestedRoot, "")
	}
	if style := tokenStyle(cfg.tokens); style != "" {
		root.SetAttr("style", style)
	}

	values := make(map[string]any, defs.Len())
	for name, fieldCfg := range defs.All() {
		value, ok := data[name]
		if !ok {
			value = fieldCfg.DefaultValue
		}
		values[name] = value
		root.Append(e.renderField(name, fieldCfg, value))
	}

	visible := conditional.Resolve(defs, values)
	for _, wrapper := range root.FindChildren(ui.ByAttr(AttrFieldName)) {
		if !visible[wrapper.AttrValue(AttrFieldName)] {
			wrapper.SetHidden(true, false)
		}
	}

	state := &formState{engine: e, defs: defs, index: conditional.Dependents(defs)}
	root.Data = state
	if len(state.index) > 0 {
		listener := func(ev *ui.Event) { e.onValueChange(root, state, ev) }
		root.On(ui.EventInput, listener)
		root.On(ui.EventChange, listener)
	}
	return root, nil
}

func (e *Engine) renderField(name string, cfg schema.FieldConfig, value any) *ui.Node {
	handler, _ := e.registry.Get(cfg.Type)

	wrapper := ui.El("div", AttrFieldName, name, AttrFieldType, cfg.Type)
	wrapper.AddClass("slabs-field", "slabs-field--"+cfg.Type, cfg.ClassName)

	label := cfg.LabelFor(name)
	showChrome := fields.KindOf(handler, cfg) != fields.KindHidden
	if showChrome {
		labelNode := ui.El("label", "class", "slabs-field__label")
		labelNode.Text = label
		if cfg.Required {
			labelNode.Append(ui.El("span", "class", "slabs-field__required", "aria-hidden", "true").SetText("*"))
		}
		wrapper.Append(labelNode)
	}

	control, err := e.renderControl(handler, name, cfg, value)
	if err != nil {
		e.logger.Warn("field render failed",
			zap.String("field", name),
			zap.String("type", cfg.Type),
			zap.Error(err),
		)
		control = ui.El("div", "class", "slabs-field__render-error", AttrRenderError, "", "role", "alert")
		control.Text = fmt.Sprintf("Unable to render %q", label)
	}
	control.SetAttr(AttrFieldControl, "")
	wrapper.Append(control)

	if showChrome {
		if desc := strings.TrimSpace(cfg.Description); desc != "" {
			wrapper.Append(ui.El("p", "class", "slabs-field__description").SetText(desc))
		}
		wrapper.Append(ui.El("div", "class", "slabs-field__error", AttrErrorSlot, "", "role", "alert"))
	}
	return wrapper
}

func (e *Engine) renderControl(handler fields.Handler, name string, cfg schema.FieldConfig, value any) (control *ui.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			control = nil
			err = fmt.Errorf("form: render %q panicked: %v", name, r)
		}
	}()
	control, err = handler.Render(name, cfg, value)
	if err == nil && control == nil {
		err = fmt.Errorf("form: handler for %q returned no control", cfg.Type)
	}
	return control, err
}

// onValueChange re-resolves visibility for every field that transitively
// depends on the field that changed.
func (e *Engine) onValueChange(root *ui.Node, state *formState, ev *ui.Event) {
	wrapper := ownWrapper(root, ev.Target)
	if wrapper == nil {
		return
	}
	changed := wrapper.AttrValue(AttrFieldName)
	affected := state.index.Affected(changed)
	if len(affected) == 0 {
		return
	}

	values := e.extractRaw(root)
	visible := conditional.Resolve(state.defs, values)
	for _, name := range affected {
		target := wrapperByName(root, name)
		if target == nil {
			continue
		}
		hidden := !visible[name]
		if target.Hidden() != hidden {
			e.logger.Debug("field visibility changed",
				zap.String("field", name),
				zap.String("trigger", changed),
				zap.Bool("hidden", hidden),
			)
		}
		target.SetHidden(hidden, true)
	}
}

// ownWrapper returns the field wrapper of root that contains node.
func ownWrapper(root, node *ui.Node) *ui.Node {
	for current := node; current != nil; current = current.Parent() {
		if current.Parent() == root {
			if current.HasAttr(AttrFieldName) {
				return current
			}
			return nil
		}
	}
	return nil
}

func wrapperByName(root *ui.Node, name string) *ui.Node {
	for _, wrapper := range fieldWrappers(root) {
		if wrapper.AttrValue(AttrFieldName) == name {
			return wrapper
		}
	}
	return nil
}

func tokenStyle(tokens map[string]string) string {
	if len(tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		name := strings.TrimPrefix(strings.TrimSpace(k), "--")
		if name == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString("--slabs-")
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(tokens[k])
	}
	return b.String()
}
