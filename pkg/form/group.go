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

// groupState is stored in a group control's Data field.
type groupState struct {
	name   string
	cfg    schema.FieldConfig
	engine *Engine
}

// Group renders cfg.Fields inside a fieldset. Its value is a single map.
type Group struct {
	nested nestedEngine
}

// NewGroup builds a group handler. Options configure its nested engine.
func NewGroup(opts ...Option) *Group {
	return &Group{nested: nestedEngine{opts: opts, exclude: []string{TypeGroup}}}
}

func (g *Group) Render(name string, cfg schema.FieldConfig, value any) (*ui.Node, error) {
	engine := g.nested.get()
	values, _ := coerce.Map(value)
	inner, err := engine.Render(cfg.Fields, values, asNestedRoot())
	if err != nil {
		return nil, err
	}

	control := ui.El("fieldset", AttrComposite, TypeGroup, "class", "slabs-group")
	if cfg.Collapsed {
		control.SetAttr("data-collapsed", "true")
	}
	if cfg.Label != "" {
		control.Append(ui.TextNode("legend", cfg.Label))
	}
	control.Append(inner)
	control.Data = &groupState{name: name, cfg: cfg, engine: engine}
	return control, nil
}

func (g *Group) Extract(control *ui.Node) any {
	state, ok := control.Data.(*groupState)
	if !ok {
		return map[string]any{}
	}
	root := control.Find(ui.ByAttr(AttrNestedRoot))
	if root == nil {
		return map[string]any{}
	}
	values, err := state.engine.Extract(root, state.cfg.Fields)
	if err != nil {
		state.engine.logger.Warn("group extract failed", zap.String("field", state.name), zap.Error(err))
		return map[string]any{}
	}
	return values
}

func (g *Group) Validate(label string, cfg schema.FieldConfig, value any) []validation.Error {
	values := map[string]any{}
	if value != nil {
		m, ok := coerce.Map(value)
		if !ok {
			return []validation.Error{validation.New(label, validation.CodeInvalidType, label+" must be an object")}
		}
		values = m
	}
	result, err := g.nested.get().Validate(cfg.Fields, values)
	if err != nil {
		return []validation.Error{validation.New(label, validation.CodeInvalidType, err.Error())}
	}
	return validation.Nest(label, result.Errors)
}

func (g *Group) CheckConfig(cfg schema.FieldConfig) error {
	if cfg.Fields.Len() == 0 {
		return fmt.Errorf("form: group requires fields")
	}
	return g.nested.get().Check(cfg.Fields)
}

func (g *Group) Kind(schema.FieldConfig) fields.Kind { return fields.KindComposite }
