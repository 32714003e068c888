package form

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// ErrUnknownTab is returned when selecting a tab the control does not define.
var ErrUnknownTab = errors.New("form: unknown tab")

// ActionSelectTab is the action of tab buttons.
const ActionSelectTab = "select-tab"

const (
	attrTab      = "data-tab"
	attrTabPanel = "data-tab-panel"
	attrActive   = "data-active"
)

type tabsState struct {
	name    string
	cfg     schema.FieldConfig
	engine  *Engine
	control *ui.Node
}

// Tabs splits sub-schemas across panels, one per entry of cfg.Tabs. Its value
// maps each tab name to that tab's field values.
type Tabs struct {
	nested nestedEngine
}

// NewTabs builds a tabs handler. Options configure its nested engine.
func NewTabs(opts ...Option) *Tabs {
	return &Tabs{nested: nestedEngine{opts: opts, exclude: []string{TypeTabs}}}
}

func (t *Tabs) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	engine := t.nested.get()
	values, _ := coerce.Map(value)

	control := ui.El("div", AttrComposite, TypeTabs, "class", "slabs-tabs")
	list := ui.El("div", "class", "slabs-tabs__list", "role", "tablist")
	control.Append(list)

	for i, tab := range cfg.Tabs {
		tabValues, _ := coerce.Map(values[tab.Name])
		inner, err := engine.Render(tab.Fields, tabValues, asNestedRoot())
		if err != nil {
			return nil, fmt.Errorf("form: tab %q: %w", tab.Name, err)
		}

		btn := actionButton(ActionSelectTab, tab.LabelText())
		btn.SetAttr(attrTab, tab.Name).SetAttr("role", "tab")
		list.Append(btn)

		panel := ui.El("div", "class", "slabs-tabs__panel", "role", "tabpanel", attrTabPanel, tab.Name)
		panel.Append(inner)
		control.Append(panel)
		activate(btn, panel, i == 0)
	}

	state := &tabsState{name: name, cfg: cfg, engine: engine, control: control}
	control.Data = state
	control.On(ui.EventClick, state.onClick)
	return control, nil
}

func (s *tabsState) onClick(ev *ui.Event) {
	btn := ev.Target.Closest(ui.ByAttrValue(AttrAction, ActionSelectTab))
	if btn == nil || btn.Closest(ui.ByAttr(AttrComposite)) != s.control {
		return
	}
	if err := s.selectTab(btn.AttrValue(attrTab)); err != nil {
		s.engine.logger.Debug("tab selection rejected", zap.String("field", s.name), zap.Error(err))
	}
}

func (s *tabsState) selectTab(name string) error {
	found := false
	for _, tab := range s.cfg.Tabs {
		if tab.Name == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w %q (field %q)", ErrUnknownTab, name, s.name)
	}
	for _, tab := range s.cfg.Tabs {
		btn, panel := s.parts(tab.Name)
		if btn != nil && panel != nil {
			activate(btn, panel, tab.Name == name)
		}
	}
	return nil
}

func (s *tabsState) parts(name string) (btn, panel *ui.Node) {
	for _, child := range s.control.Children() {
		if child.AttrValue(attrTabPanel) == name {
			panel = child
		}
		if child.AttrValue("role") == "tablist" {
			for _, b := range child.Children() {
				if b.AttrValue(attrTab) == name {
					btn = b
				}
			}
		}
	}
	return btn, panel
}

func activate(btn, panel *ui.Node, active bool) {
	if active {
		btn.SetAttr("aria-selected", "true").SetAttr(attrActive, "")
	} else {
		btn.SetAttr("aria-selected", "false").RemoveAttr(attrActive)
	}
	panel.SetHidden(!active, false)
}

// SelectTab shows the panel of the named tab and hides the others.
func SelectTab(control *ui.Node, name string) error {
	state, ok := control.Data.(*tabsState)
	if !ok {
		return fmt.Errorf("%w: not a tabs control", ErrNotComposite)
	}
	return state.selectTab(name)
}

// ActiveTab returns the name of the visible tab.
func ActiveTab(control *ui.Node) string {
	state, ok := control.Data.(*tabsState)
	if !ok {
		return ""
	}
	for _, tab := range state.cfg.Tabs {
		if btn, _ := state.parts(tab.Name); btn != nil && btn.HasAttr(attrActive) {
			return tab.Name
		}
	}
	return ""
}

func (t *Tabs) Extract(control *ui.Node) any {
	state, ok := control.Data.(*tabsState)
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(state.cfg.Tabs))
	for _, tab := range state.cfg.Tabs {
		_, panel := state.parts(tab.Name)
		if panel == nil {
			continue
		}
		root := panel.Find(ui.ByAttr(AttrNestedRoot))
		if root == nil {
			continue
		}
		values, err := state.engine.Extract(root, tab.Fields)
		if err != nil {
			state.engine.logger.Warn("tab extract failed",
				zap.String("field", state.name),
				zap.String("tab", tab.Name),
				zap.Error(err),
			)
			values = map[string]any{}
		}
		out[tab.Name] = values
	}
	return out
}

func (t *Tabs) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	values := map[string]any{}
	if value != nil {
		m, ok := coerce.Map(value)
		if !ok {
			return []validation.Error{validation.New(label, validation.CodeInvalidType, label+" must be an object")}
		}
		values = m
	}
	engine := t.nested.get()
	var errs []validation.Error
	for _, tab := range cfg.Tabs {
		path := label + validation.PathSeparator + tab.LabelText()
		tabValues := map[string]any{}
		if raw := values[tab.Name]; raw != nil {
			m, ok := coerce.Map(raw)
			if !ok {
				errs = append(errs, validation.New(path, validation.CodeInvalidType, path+" must be an object"))
				continue
			}
			tabValues = m
		}
		result, err := engine.Validate(tab.Fields, tabValues)
		if err != nil {
			errs = append(errs, validation.New(path, validation.CodeInvalidType, err.Error()))
			continue
		}
		errs = append(errs, validation.Nest(path, result.Errors)...)
	}
	return errs
}

func (t *Tabs) CheckConfig(cfg schema.FieldConfig) error {
	if len(cfg.Tabs) == 0 {
		return fmt.Errorf("form: tabs requires at least one tab")
	}
	engine := t.nested.get()
	for _, tab := range cfg.Tabs {
		if err := engine.Check(tab.Fields); err != nil {
			return fmt.Errorf("form: tab %q: %w", tab.Name, err)
		}
	}
	return nil
}

func (t *Tabs) Kind(schema.FieldConfig) fields.Kind { return fields.KindComposite }
