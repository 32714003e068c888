package form_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/form"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

func ptrFloat(v float64) *float64 { return &v }

func codes(errs []validation.Error) []validation.Code {
	var out []validation.Code
	for _, err := range errs {
		out = append(out, err.Code)
	}
	return out
}

func ctaSchema(required bool) schema.Fields {
	return schema.NewFields(
		schema.Field("showCTA", schema.FieldConfig{Type: fields.TypeBoolean, Label: "Show CTA"}),
		schema.Field("ctaLabel", schema.FieldConfig{
			Type:        fields.TypeText,
			Label:       "CTA label",
			Required:    required,
			Conditional: &schema.Conditional{Field: "showCTA", Operator: "==", Value: true},
		}),
	)
}

func TestRenderExtractRoundTrip(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(
		schema.Field("title", schema.FieldConfig{Type: fields.TypeText, Label: "Title"}),
		schema.Field("body", schema.FieldConfig{Type: fields.TypeTextarea, Label: "Body"}),
		schema.Field("count", schema.FieldConfig{Type: fields.TypeNumber, Label: "Count"}),
		schema.Field("size", schema.FieldConfig{Type: fields.TypeSelect, Label: "Size", Options: []schema.Option{{Value: "s"}, {Value: "m"}}}),
		schema.Field("align", schema.FieldConfig{Type: fields.TypeRadio, Label: "Align", Options: []schema.Option{{Value: "left"}, {Value: "right"}}}),
		schema.Field("tags", schema.FieldConfig{Type: fields.TypeCheckbox, Label: "Tags", Options: []schema.Option{{Value: "a"}, {Value: "b"}, {Value: "c"}}}),
		schema.Field("agree", schema.FieldConfig{Type: fields.TypeBoolean, Label: "Agree"}),
		schema.Field("id", schema.FieldConfig{Type: fields.TypeHidden}),
	)
	data := map[string]any{
		"title": "Hello",
		"body":  "Some text",
		"count": float64(3),
		"size":  "m",
		"align": "right",
		"tags":  []any{"a", "c"},
		"agree": true,
		"id":    "abc-123",
	}

	engine := form.New(nil)
	root, err := engine.Render(defs, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := engine.Extract(root, defs)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderUsesDefaultValues(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(
		schema.Field("title", schema.FieldConfig{Type: fields.TypeText, DefaultValue: "Untitled"}),
		schema.Field("count", schema.FieldConfig{Type: fields.TypeNumber, DefaultValue: 2}),
	)
	engine := form.New(nil)
	root, err := engine.Render(defs, map[string]any{"count": 5})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := engine.Extract(root, defs)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]any{"title": "Untitled", "count": float64(5)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected values (-want +got):\n%s", diff)
	}
}

func TestRenderMarksFields(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(
		schema.Field("email", schema.FieldConfig{Type: fields.TypeEmail, Label: "Email", Required: true, Description: "Work address", ClassName: "wide"}),
		schema.Field("token", schema.FieldConfig{Type: fields.TypeHidden}),
	)
	root, err := form.New(nil, form.WithDefaultContainerClass("site")).Render(defs, nil,
		form.WithFormID("contact"),
		form.WithContainerClass("compact"),
		form.WithThemeTokens(map[string]string{"primary": "#123", "radius": "4px"}),
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := root.AttrValue(form.AttrFormID); got != "contact" {
		t.Fatalf("expected form id contact, got %q", got)
	}
	for _, class := range []string{form.DefaultContainerClass, "site", "compact"} {
		if !root.HasClass(class) {
			t.Fatalf("expected root class %q in %q", class, root.AttrValue("class"))
		}
	}
	if got := root.AttrValue("style"); got != "--slabs-primary:#123;--slabs-radius:4px" {
		t.Fatalf("unexpected token style %q", got)
	}

	email := form.FieldWrapper(root, "email")
	if email == nil {
		t.Fatalf("expected email wrapper")
	}
	if email.AttrValue(form.AttrFieldType) != fields.TypeEmail || !email.HasClass("wide") {
		t.Fatalf("unexpected wrapper attrs %v", email.Attrs())
	}
	if label := email.Find(ui.ByTag("label")); label == nil || !strings.HasPrefix(label.TextContent(), "Email") {
		t.Fatalf("expected label, got %v", label)
	}
	if email.Find(ui.ByAttr(form.AttrErrorSlot)) == nil {
		t.Fatalf("expected error slot")
	}

	token := form.FieldWrapper(root, "token")
	if token.Find(ui.ByTag("label")) != nil || token.Find(ui.ByAttr(form.AttrErrorSlot)) != nil {
		t.Fatalf("hidden field should not render label or error slot: %s", token.HTML())
	}
}

func TestExtractNullsHiddenFields(t *testing.T) {
	t.Parallel()

	defs := ctaSchema(false)
	engine := form.New(nil)
	root, err := engine.Render(defs, map[string]any{"showCTA": false, "ctaLabel": "Buy now"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !form.FieldWrapper(root, "ctaLabel").Hidden() {
		t.Fatalf("expected ctaLabel hidden at render")
	}

	got, err := engine.Extract(root, defs)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]any{"showCTA": false, "ctaLabel": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected values (-want +got):\n%s", diff)
	}

	again, err := engine.Extract(root, defs)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("extract is not idempotent (-first +second):\n%s", diff)
	}
}

func TestExtractWithoutSchemaKeepsHiddenValues(t *testing.T) {
	t.Parallel()

	defs := ctaSchema(false)
	engine := form.New(nil)
	root, err := engine.Render(defs, map[string]any{"ctaLabel": "Buy now"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := engine.Extract(root, schema.Fields{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got["ctaLabel"] != "Buy now" {
		t.Fatalf("expected raw value without a schema, got %v", got["ctaLabel"])
	}
}

func TestNonFiniteNumberIsInvalid(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(schema.Field("n", schema.FieldConfig{Type: fields.TypeNumber, Label: "N"}))
	engine := form.New(nil)
	for _, raw := range []string{"Inf", "+Infinity", "-inf", "NaN"} {
		root, err := engine.Render(defs, nil)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		form.FieldControl(root, "n").Input(raw)
		values, err := engine.Extract(root, defs)
		if err != nil {
			t.Fatalf("extract: %v", err)
		}
		if values["n"] != raw {
			t.Fatalf("%s: expected raw text, got %#v", raw, values["n"])
		}
		result, err := engine.Validate(defs, values)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if diff := cmp.Diff([]validation.Code{validation.CodeInvalidNumber}, codes(result.Errors)); diff != "" {
			t.Fatalf("%s: unexpected codes (-want +got):\n%s", raw, diff)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		defs  schema.Fields
		data  map[string]any
		want  []validation.Code
		field string
	}{
		{
			name:  "required missing",
			defs:  schema.NewFields(schema.Field("title", schema.FieldConfig{Type: fields.TypeText, Label: "Title", Required: true})),
			data:  map[string]any{"title": ""},
			want:  []validation.Code{validation.CodeRequired},
			field: "title",
		},
		{
			name: "required present",
			defs: schema.NewFields(schema.Field("title", schema.FieldConfig{Type: fields.TypeText, Required: true})),
			data: map[string]any{"title": "Hi"},
		},
		{
			name: "hidden required field is skipped",
			defs: ctaSchema(true),
			data: map[string]any{"showCTA": false},
		},
		{
			name:  "visible required field is checked",
			defs:  ctaSchema(true),
			data:  map[string]any{"showCTA": true, "ctaLabel": ""},
			want:  []validation.Code{validation.CodeRequired},
			field: "ctaLabel",
		},
		{
			name: "orphan conditional hides the field",
			defs: schema.NewFields(schema.Field("extra", schema.FieldConfig{
				Type:        fields.TypeText,
				Required:    true,
				Conditional: &schema.Conditional{Field: "missing", Operator: "not_empty"},
			})),
			data: map[string]any{},
		},
		{
			name: "errors aggregate in field order",
			defs: schema.NewFields(
				schema.Field("email", schema.FieldConfig{Type: fields.TypeEmail}),
				schema.Field("age", schema.FieldConfig{Type: fields.TypeNumber, Min: ptrFloat(18)}),
			),
			data:  map[string]any{"email": "nope", "age": 12},
			want:  []validation.Code{validation.CodeInvalidEmail, validation.CodeMin},
			field: "email",
		},
	}

	engine := form.New(nil)
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := engine.Validate(tc.defs, tc.data)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if diff := cmp.Diff(tc.want, codes(result.Errors)); diff != "" {
				t.Fatalf("unexpected codes (-want +got):\n%s", diff)
			}
			if result.Valid != (len(tc.want) == 0) {
				t.Fatalf("valid = %v with errors %v", result.Valid, result.Errors)
			}
			if tc.field != "" && len(result.For(tc.field)) == 0 {
				t.Fatalf("expected errors keyed by %q, got %v", tc.field, result.FieldErrors)
			}
			if len(tc.want) == 0 && result.FieldErrors != nil {
				t.Fatalf("expected no field errors, got %v", result.FieldErrors)
			}
		})
	}
}

func TestRequiredMessageUsesLabel(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(schema.Field("title", schema.FieldConfig{Type: fields.TypeText, Label: "Title", Required: true}))
	result, err := form.Validate(defs, map[string]any{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := []validation.Error{{Field: "Title", Message: "Title is required", Code: validation.CodeRequired}}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
}

func TestVisibilityFollowsEvents(t *testing.T) {
	t.Parallel()

	defs := ctaSchema(false)
	engine := form.New(nil)
	root, err := engine.Render(defs, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	wrapper := form.FieldWrapper(root, "ctaLabel")
	if !wrapper.Hidden() {
		t.Fatalf("expected ctaLabel hidden initially")
	}

	toggle := form.FieldControl(root, "showCTA")
	toggle.Check(true)
	if wrapper.Hidden() {
		t.Fatalf("expected ctaLabel visible after checking showCTA")
	}
	if got := wrapper.AttrValue(ui.AttrTransition); got != ui.TransitionFadeIn {
		t.Fatalf("expected fade in transition, got %q", got)
	}

	toggle.Check(false)
	if !wrapper.Hidden() {
		t.Fatalf("expected ctaLabel hidden after unchecking showCTA")
	}
}

func TestVisibilityCascades(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(
		schema.Field("a", schema.FieldConfig{Type: fields.TypeBoolean}),
		schema.Field("b", schema.FieldConfig{Type: fields.TypeText, Conditional: &schema.Conditional{Field: "a", Operator: "==", Value: true}}),
		schema.Field("c", schema.FieldConfig{Type: fields.TypeText, Conditional: &schema.Conditional{Field: "b", Operator: "not_empty"}}),
	)
	engine := form.New(nil)
	root, err := engine.Render(defs, map[string]any{"a": true, "b": "set", "c": "deep"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, c := form.FieldWrapper(root, "b"), form.FieldWrapper(root, "c")
	if b.Hidden() || c.Hidden() {
		t.Fatalf("expected b and c visible initially")
	}

	form.FieldControl(root, "a").Check(false)
	if !b.Hidden() || !c.Hidden() {
		t.Fatalf("expected hiding a to cascade to b and c")
	}
	got, err := engine.Extract(root, defs)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]any{"a": false, "b": nil, "c": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected values (-want +got):\n%s", diff)
	}

	form.FieldControl(root, "a").Check(true)
	if b.Hidden() || c.Hidden() {
		t.Fatalf("expected b and c visible again")
	}
	form.FieldControl(root, "b").Input("")
	if !c.Hidden() {
		t.Fatalf("expected clearing b to hide c")
	}
}

func TestApplyVisibility(t *testing.T) {
	t.Parallel()

	defs := ctaSchema(false)
	engine := form.New(nil)
	root, err := engine.Render(defs, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	form.FieldControl(root, "showCTA").Checked = true
	visible := engine.ApplyVisibility(root, defs)
	if !visible["ctaLabel"] || form.FieldWrapper(root, "ctaLabel").Hidden() {
		t.Fatalf("expected ctaLabel visible after ApplyVisibility, got %v", visible)
	}
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		defs schema.Fields
		want error
	}{
		{
			name: "unknown type",
			defs: schema.NewFields(schema.Field("x", schema.FieldConfig{Type: "rating"})),
			want: fields.ErrNotRegistered,
		},
		{
			name: "missing type",
			defs: schema.NewFields(schema.Field("x", schema.FieldConfig{})),
			want: schema.ErrMissingType,
		},
		{
			name: "repeater directly inside repeater",
			defs: schema.NewFields(schema.Field("outer", schema.FieldConfig{
				Type: form.TypeRepeater,
				Fields: schema.NewFields(schema.Field("inner", schema.FieldConfig{
					Type:   form.TypeRepeated,
					Fields: schema.NewFields(schema.Field("name", schema.FieldConfig{Type: fields.TypeText})),
				})),
			})),
			want: fields.ErrNotRegistered,
		},
	}

	engine := form.New(nil)
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := engine.Render(tc.defs, nil); !errors.Is(err, tc.want) {
				t.Fatalf("render: expected %v, got %v", tc.want, err)
			}
			if _, err := engine.Validate(tc.defs, nil); !errors.Is(err, tc.want) {
				t.Fatalf("validate: expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestWysiwygPatternIsConfigError(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(schema.Field("body", schema.FieldConfig{Type: fields.TypeWysiwyg, Pattern: "^<p>"}))
	err := form.New(nil).Check(defs)
	if err == nil || !strings.Contains(err.Error(), "pattern") {
		t.Fatalf("expected pattern config error, got %v", err)
	}
}

func TestRepeaterThroughGroupIsAllowed(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(schema.Field("outer", schema.FieldConfig{
		Type: form.TypeRepeater,
		Fields: schema.NewFields(schema.Field("box", schema.FieldConfig{
			Type: form.TypeGroup,
			Fields: schema.NewFields(schema.Field("inner", schema.FieldConfig{
				Type:   form.TypeRepeater,
				Fields: schema.NewFields(schema.Field("name", schema.FieldConfig{Type: fields.TypeText})),
			})),
		})),
	}))
	data := map[string]any{
		"outer": []any{
			map[string]any{"box": map[string]any{"inner": []any{map[string]any{"name": "deep"}}}},
		},
	}
	engine := form.New(nil)
	root, err := engine.Render(defs, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := engine.Extract(root, defs)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

type panicHandler struct{}

func (panicHandler) Render(string, schema.FieldConfig, any) (*ui.Node, error) {
	panic("exploded")
}

func (panicHandler) Extract(*ui.Node) any { return "never" }

func (panicHandler) Validate(string, schema.FieldConfig, any) []validation.Error { return nil }

func TestRenderFaultIsIsolated(t *testing.T) {
	t.Parallel()

	registry := form.NewDefaultRegistry()
	if err := registry.Register("rating", panicHandler{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	defs := schema.NewFields(
		schema.Field("title", schema.FieldConfig{Type: fields.TypeText}),
		schema.Field("stars", schema.FieldConfig{Type: "rating", Label: "Stars"}),
	)
	engine := form.New(registry)
	root, err := engine.Render(defs, map[string]any{"title": "ok"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	control := form.FieldControl(root, "stars")
	if control == nil || !control.HasAttr(form.AttrRenderError) {
		t.Fatalf("expected render error placeholder, got %v", control)
	}
	got, err := engine.Extract(root, defs)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]any{"title": "ok", "stars": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected values (-want +got):\n%s", diff)
	}
}

func TestShowErrors(t *testing.T) {
	t.Parallel()

	defs := schema.NewFields(
		schema.Field("title", schema.FieldConfig{Type: fields.TypeText, Label: "Title", Required: true}),
		schema.Field("note", schema.FieldConfig{Type: fields.TypeText}),
	)
	engine := form.New(nil)
	root, err := engine.Render(defs, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	result, err := engine.Validate(defs, map[string]any{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	engine.ShowErrors(root, result)
	title := form.FieldWrapper(root, "title")
	if !title.HasAttr(form.AttrInvalid) {
		t.Fatalf("expected title flagged invalid")
	}
	slot := title.Find(ui.ByAttr(form.AttrErrorSlot))
	if got := slot.TextContent(); got != "Title is required" {
		t.Fatalf("unexpected slot text %q", got)
	}
	if form.FieldWrapper(root, "note").HasAttr(form.AttrInvalid) {
		t.Fatalf("note should not be invalid")
	}

	engine.ClearErrors(root)
	if title.HasAttr(form.AttrInvalid) || len(slot.Children()) != 0 {
		t.Fatalf("expected errors cleared, got %s", title.HTML())
	}
}
