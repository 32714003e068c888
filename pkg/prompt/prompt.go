// Package prompt fills a rendered form from a terminal. Answers are written
// into the UI tree through the same input and change events a browser would
// fire, so conditional fields appear and disappear while the user answers.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/form"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNotFormRoot is returned when Fill receives a node that was not
	// produced by form rendering.
	ErrNotFormRoot = errors.New("prompt: node is not a form root")
)

const noneOption = "(none)"

const doneOption = "Done"

// Filler walks a form root and asks for every visible field.
type Filler struct {
	driver Driver
	engine *form.Engine
	logger *zap.Logger
}

// Option configures a Filler.
type Option func(*Filler)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithEngine sets the engine used to render, extract and validate.
func WithEngine(engine *form.Engine) Option {
	return func(f *Filler) {
		if engine != nil {
			f.engine = engine
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New builds a Filler that defaults to the survey driver and the default
// engine.
func New(opts ...Option) *Filler {
	f := &Filler{
		driver: NewSurveyDriver(nil),
		engine: form.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Run renders defs with data, fills the form interactively, then returns the
// extracted values and their validation result.
func (f *Filler) Run(ctx context.Context, defs schema.Fields, data map[string]any) (map[string]any, validation.Result, error) {
	root, err := f.engine.Render(defs, data)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if err := f.Fill(ctx, root); err != nil {
		return nil, validation.Result{}, err
	}
	values, err := f.engine.Extract(root, defs)
	if err != nil {
		return nil, validation.Result{}, err
	}
	result, err := f.engine.Validate(defs, values)
	if err != nil {
		return nil, validation.Result{}, err
	}
	return values, result, nil
}

// Fill asks for each visible field of root in schema order. Fields revealed
// by a later answer are asked in a follow-up pass.
func (f *Filler) Fill(ctx context.Context, root *ui.Node) error {
	return f.fill(ctx, root, "")
}

func (f *Filler) fill(ctx context.Context, root *ui.Node, prefix string) error {
	defs, ok := form.Schema(root)
	if !ok {
		return ErrNotFormRoot
	}
	asked := make(map[string]bool, defs.Len())
	for {
		progressed := false
		for name, cfg := range defs.All() {
			if asked[name] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			wrapper := form.FieldWrapper(root, name)
			if wrapper == nil || wrapper.Hidden() {
				continue
			}
			asked[name] = true
			progressed = true
			if err := f.field(ctx, root, name, cfg, prefix); err != nil {
				return err
			}
		}
		if !progressed {
			return nil
		}
	}
}

func (f *Filler) field(ctx context.Context, root *ui.Node, name string, cfg schema.FieldConfig, prefix string) error {
	control := form.FieldControl(root, name)
	if control == nil || control.HasAttr(form.AttrRenderError) {
		f.logger.Debug("skipping field without control", zap.String("field", name))
		return nil
	}
	handler, err := f.engine.Registry().Get(cfg.Type)
	if err != nil {
		f.logger.Debug("skipping unregistered field", zap.String("field", name), zap.String("type", cfg.Type))
		return nil
	}

	label := cfg.LabelFor(name)
	message := label
	if prefix != "" {
		message = prefix + validation.PathSeparator + label
	}
	validate := func(value any) error {
		if errs := handler.Validate(label, cfg, value); len(errs) > 0 {
			return errors.New(errs[0].Message)
		}
		return nil
	}

	switch fields.KindOf(handler, cfg) {
	case fields.KindHidden:
		return nil
	case fields.KindBoolean:
		return f.askBoolean(ctx, control, message, cfg)
	case fields.KindNumber:
		return f.askNumber(ctx, control, message, cfg, validate)
	case fields.KindLongText:
		return f.askLongText(ctx, control, message, cfg, validate)
	case fields.KindChoice:
		return f.askChoice(ctx, control, message, cfg)
	case fields.KindMultiChoice:
		return f.askMultiChoice(ctx, control, message, cfg)
	case fields.KindComposite:
		return f.askComposite(ctx, control, message, cfg)
	default:
		return f.askText(ctx, control, message, cfg, validate)
	}
}

func (f *Filler) askText(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig, validate func(any) error) error {
	target := textTarget(control, "input", "textarea")
	if target == nil {
		return nil
	}
	answer, err := f.driver.Input(ctx, InputConfig{
		Message:   message,
		Default:   target.Value,
		Help:      cfg.Description,
		Validator: func(s string) error { return validate(strings.TrimSpace(s)) },
	})
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	target.Input(answer)
	target.Change(answer)
	return nil
}

func (f *Filler) askLongText(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig, validate func(any) error) error {
	target := textTarget(control, "textarea", "input")
	if target == nil {
		return nil
	}
	answer, err := f.driver.TextArea(ctx, TextAreaConfig{
		Message:   message,
		Default:   target.Value,
		Help:      cfg.Description,
		Validator: func(s string) error { return validate(strings.TrimSpace(s)) },
	})
	if err != nil {
		return err
	}
	target.Input(answer)
	target.Change(answer)
	return nil
}

func (f *Filler) askNumber(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig, validate func(any) error) error {
	target := textTarget(control, "input")
	if target == nil {
		return nil
	}
	answer, err := f.driver.Input(ctx, InputConfig{
		Message: message,
		Default: target.Value,
		Help:    cfg.Description,
		Validator: func(s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				return validate(nil)
			}
			n, ok := coerce.Number(s)
			if !ok {
				return fmt.Errorf("%q is not a number", s)
			}
			return validate(n)
		},
	})
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	target.Input(answer)
	target.Change(answer)
	return nil
}

func (f *Filler) askBoolean(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig) error {
	target := control
	if target.Tag != "input" {
		target = control.Find(ui.ByAttrValue("type", "checkbox"))
	}
	if target == nil {
		return nil
	}
	answer, err := f.driver.Confirm(ctx, ConfirmConfig{
		Message: message,
		Default: target.Checked,
		Help:    cfg.Description,
	})
	if err != nil {
		return err
	}
	target.Check(answer)
	return nil
}

func (f *Filler) askChoice(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig) error {
	if len(cfg.Options) == 0 {
		return nil
	}
	labels := optionLabels(cfg.Options)
	offset := 0
	if !cfg.Required {
		labels = append([]string{noneOption}, labels...)
		offset = 1
	}
	current := currentChoices(control)
	defaultIndex := 0
	for i, opt := range cfg.Options {
		if current[opt.Value] {
			defaultIndex = i + offset
			break
		}
	}
	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         cfg.Description,
	})
	if err != nil {
		return err
	}
	var values []string
	if i := idx - offset; i >= 0 && i < len(cfg.Options) {
		values = []string{cfg.Options[i].Value}
	}
	applyChoices(control, values)
	return nil
}

func (f *Filler) askMultiChoice(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig) error {
	if len(cfg.Options) == 0 {
		return nil
	}
	current := currentChoices(control)
	var defaults []int
	for i, opt := range cfg.Options {
		if current[opt.Value] {
			defaults = append(defaults, i)
		}
	}
	indices, err := f.driver.MultiSelect(ctx, SelectConfig{
		Message:  message,
		Options:  optionLabels(cfg.Options),
		Defaults: defaults,
		Help:     cfg.Description,
	})
	if err != nil {
		return err
	}
	values := make([]string, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(cfg.Options) {
			values = append(values, cfg.Options[i].Value)
		}
	}
	applyChoices(control, values)
	return nil
}

func (f *Filler) askComposite(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig) error {
	switch control.AttrValue(form.AttrComposite) {
	case form.TypeRepeater:
		return f.askRepeater(ctx, control, message, cfg)
	case form.TypeFlexible:
		return f.askFlexible(ctx, control, message, cfg)
	case form.TypeTabs:
		for i, tab := range cfg.Tabs {
			if err := form.SelectTab(control, tab.Name); err != nil {
				return err
			}
			roots := nestedRoots(control)
			if i >= len(roots) {
				break
			}
			if err := f.fill(ctx, roots[i], message+validation.PathSeparator+tab.LabelText()); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, nested := range nestedRoots(control) {
			if err := f.fill(ctx, nested, message); err != nil {
				return err
			}
		}
		return nil
	}
}

func (f *Filler) askRepeater(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig) error {
	rows := form.Rows(control)
	for i, row := range rows {
		if err := f.fillRow(ctx, row, validation.RowLabel(message, i)); err != nil {
			return err
		}
	}
	for count := len(rows); ; count++ {
		if cfg.Max != nil && float64(count) >= *cfg.Max {
			return nil
		}
		if cfg.Min == nil || float64(count) >= *cfg.Min {
			more, err := f.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Add a row to %s?", message),
				Default: count == 0 && cfg.Required,
			})
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		row, err := form.AddRow(control, nil)
		if errors.Is(err, form.ErrMaxRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := f.fillRow(ctx, row, validation.RowLabel(message, count)); err != nil {
			return err
		}
	}
}

func (f *Filler) askFlexible(ctx context.Context, control *ui.Node, message string, cfg schema.FieldConfig) error {
	rows := form.Rows(control)
	for i, row := range rows {
		if err := f.fillRow(ctx, row, validation.RowLabel(message, i)); err != nil {
			return err
		}
	}
	labels := make([]string, 0, len(cfg.Layouts)+1)
	for _, layout := range cfg.Layouts {
		labels = append(labels, layout.LabelText())
	}
	for count := len(rows); ; count++ {
		if cfg.Max != nil && float64(count) >= *cfg.Max {
			return nil
		}
		options := labels
		if cfg.Min == nil || float64(count) >= *cfg.Min {
			options = append(append([]string(nil), labels...), doneOption)
		}
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      fmt.Sprintf("Add a block to %s", message),
			Options:      options,
			DefaultIndex: len(options) - 1,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(cfg.Layouts) {
			return nil
		}
		row, err := form.AddLayout(control, cfg.Layouts[idx].Name, nil)
		if errors.Is(err, form.ErrMaxRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := f.fillRow(ctx, row, validation.RowLabel(message, count)); err != nil {
			return err
		}
	}
}

func (f *Filler) fillRow(ctx context.Context, row *ui.Node, label string) error {
	nested := form.RowRoot(row)
	if nested == nil {
		f.logger.Debug("skipping row without fields", zap.String("row", label))
		return nil
	}
	if err := f.driver.Info(ctx, label); err != nil {
		return err
	}
	return f.fill(ctx, nested, label)
}

// nestedRoots lists the render roots directly owned by a composite control.
func nestedRoots(control *ui.Node) []*ui.Node {
	var out []*ui.Node
	control.Walk(func(n *ui.Node) bool {
		if n != control && n.HasAttr(form.AttrNestedRoot) {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func textTarget(control *ui.Node, tags ...string) *ui.Node {
	for _, tag := range tags {
		if control.Tag == tag {
			return control
		}
	}
	return control.Find(ui.ByTag(tags...))
}

func optionLabels(options []schema.Option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.Text()
	}
	return out
}

func currentChoices(control *ui.Node) map[string]bool {
	out := make(map[string]bool)
	if sel := textTarget(control, "select"); sel != nil {
		for _, option := range sel.FindAll(ui.ByTag("option")) {
			if option.Selected {
				out[option.AttrValue("value")] = true
			}
		}
		return out
	}
	for _, input := range control.FindAll(ui.ByTag("input")) {
		if input.Checked {
			out[input.AttrValue("value")] = true
		}
	}
	return out
}

// applyChoices selects values on a select control, or checks the matching
// radio and checkbox inputs.
func applyChoices(control *ui.Node, values []string) {
	if sel := textTarget(control, "select"); sel != nil {
		sel.Select(values...)
		return
	}
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	cleared := false
	for _, input := range control.FindAll(ui.ByTag("input")) {
		selected := want[input.AttrValue("value")]
		switch input.AttrValue("type") {
		case "radio":
			if selected {
				input.Check(true)
			} else if input.Checked && len(values) == 0 {
				input.Checked = false
				cleared = true
			}
		case "checkbox":
			if input.Checked != selected {
				input.Check(selected)
			}
		}
	}
	if cleared {
		control.Dispatch(ui.EventChange)
	}
}
