package form

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/conditional"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Validate checks data against defs. Fields hidden by their conditional,
// including fields watching a name that is not part of defs, are skipped, so
// a hidden field never reports an error. Every visible field is validated;
// errors are aggregated in field order.
func (e *Engine) Validate(defs schema.Fields, data map[string]any) (validation.Result, error) {
	if err := e.Check(defs); err != nil {
		return validation.Result{}, err
	}

	visible := conditional.Resolve(defs, data)
	var builder validation.Builder
	for name, cfg := range defs.All() {
		if !visible[name] {
			continue
		}
		handler, err := e.registry.Get(cfg.Type)
		if err != nil {
			return validation.Result{}, fmt.Errorf("form: field %q: %w", name, err)
		}
		builder.Add(name, e.validateField(handler, name, cfg, data[name])...)
	}
	return builder.Result(), nil
}

func (e *Engine) validateField(handler fields.Handler, name string, cfg schema.FieldConfig, value any) (errs []validation.Error) {
	label := cfg.LabelFor(name)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("field validate failed", zap.String("field", name), zap.Any("panic", r))
			errs = []validation.Error{validation.New(label, validation.CodeInvalidType, label+" could not be validated")}
		}
	}()
	return handler.Validate(label, cfg, value)
}

// ShowErrors writes each field's messages into its error slot and flags the
// wrapper as invalid. Slots of fields without errors are cleared.
func (e *Engine) ShowErrors(root *ui.Node, result validation.Result) {
	for _, wrapper := range fieldWrappers(root) {
		slot := wrapper.Find(func(n *ui.Node) bool {
			return n.HasAttr(AttrErrorSlot) && n.Parent() == wrapper
		})
		if slot == nil {
			continue
		}
		slot.Clear()
		errs := result.For(wrapper.AttrValue(AttrFieldName))
		if len(errs) == 0 {
			wrapper.RemoveAttr(AttrInvalid)
			if control := fieldControl(wrapper); control != nil {
				control.RemoveAttr("aria-invalid")
			}
			continue
		}
		wrapper.SetAttr(AttrInvalid, "true")
		if control := fieldControl(wrapper); control != nil {
			control.SetAttr("aria-invalid", "true")
		}
		for _, err := range errs {
			msg := ui.El("p", "class", "slabs-field__message", "data-error-code", string(err.Code))
			msg.Text = err.Message
			if strings.Contains(err.Field, validation.PathSeparator) {
				msg.Text = err.Field + ": " + err.Message
			}
			slot.Append(msg)
		}
	}
}

// ClearErrors empties every error slot.
func (e *Engine) ClearErrors(root *ui.Node) {
	e.ShowErrors(root, validation.Valid())
}
