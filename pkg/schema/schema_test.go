package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

const sampleJSON = `{
  "title": {"type": "text", "required": true, "maxLength": 80},
  "showCTA": {"type": "boolean"},
  "ctaText": {
    "type": "text",
    "conditional": {"field": "showCTA", "operator": "==", "value": true}
  },
  "size": {"type": "select", "options": ["s", {"value": "m", "label": "Medium"}, 3]},
  "items": {
    "type": "repeater",
    "min": 1,
    "fields": {"zeta": {"type": "text"}, "alpha": {"type": "number"}}
  },
  "blocks": {
    "type": "flexible",
    "layouts": {
      "hero": {"label": "Hero", "fields": {"heading": {"type": "text"}}},
      "quote": {"fields": {"body": {"type": "textarea"}}}
    }
  }
}`

func TestFieldsJSONPreservesOrder(t *testing.T) {
	t.Parallel()

	var fields Fields
	if err := json.Unmarshal([]byte(sampleJSON), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff([]string{"title", "showCTA", "ctaText", "size", "items", "blocks"}, fields.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	items, _ := fields.Get("items")
	if diff := cmp.Diff([]string{"zeta", "alpha"}, items.Fields.Names()); diff != "" {
		t.Fatalf("nested order mismatch (-want +got):\n%s", diff)
	}
	if items.Min == nil || *items.Min != 1 {
		t.Fatalf("expected min=1, got %v", items.Min)
	}

	size, _ := fields.Get("size")
	wantOptions := []Option{{Value: "s"}, {Value: "m", Label: "Medium"}, {Value: "3"}}
	if diff := cmp.Diff(wantOptions, size.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	blocks, _ := fields.Get("blocks")
	if diff := cmp.Diff([]string{"hero", "quote"}, blocks.Layouts.Names()); diff != "" {
		t.Fatalf("layout order mismatch (-want +got):\n%s", diff)
	}
	hero, ok := blocks.Layouts.Get("hero")
	if !ok || hero.Label != "Hero" || !hero.Fields.Has("heading") {
		t.Fatalf("unexpected hero layout: %+v", hero)
	}

	cta, _ := fields.Get("ctaText")
	if cta.Conditional == nil || cta.Conditional.Field != "showCTA" || cta.Conditional.Value != true {
		t.Fatalf("unexpected conditional: %+v", cta.Conditional)
	}
}

func TestFieldsMarshalJSONKeepsOrder(t *testing.T) {
	t.Parallel()

	fields := NewFields(
		Field("b", FieldConfig{Type: "text"}),
		Field("a", FieldConfig{Type: "group", Fields: NewFields(Field("y", FieldConfig{Type: "text"}))}),
	)
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"b":{"type":"text"},"a":{"type":"group","fields":{"y":{"type":"text"}}}}`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsMarshalYAMLKeepsOrder(t *testing.T) {
	t.Parallel()

	fields := NewFields(
		Field("b", FieldConfig{Type: "text", Required: true}),
		Field("a", FieldConfig{Type: "group", Fields: NewFields(Field("y", FieldConfig{Type: "text"}))}),
	)
	data, err := yaml.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "b:\n    type: text\n    required: true\na:\n    type: group\n    fields:\n        y:\n            type: text\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsYAMLPreservesOrder(t *testing.T) {
	t.Parallel()

	src := `
title:
  type: text
  minLength: 3
tabs:
  type: tabs
  tabs:
    - name: main
      fields:
        body: {type: textarea}
        summary: {type: text}
    - name: seo
      label: SEO
      fields:
        slug: {type: text}
blocks:
  type: flexible
  layouts:
    - name: hero
      fields:
        heading: {type: text}
`
	var fields Fields
	if err := yaml.Unmarshal([]byte(src), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"title", "tabs", "blocks"}, fields.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	title, _ := fields.Get("title")
	if title.MinLength == nil || *title.MinLength != 3 {
		t.Fatalf("expected minLength=3")
	}
	tabs, _ := fields.Get("tabs")
	if len(tabs.Tabs) != 2 || tabs.Tabs[1].LabelText() != "SEO" {
		t.Fatalf("unexpected tabs: %+v", tabs.Tabs)
	}
	if diff := cmp.Diff([]string{"body", "summary"}, tabs.Tabs[0].Fields.Names()); diff != "" {
		t.Fatalf("tab field order mismatch (-want +got):\n%s", diff)
	}
	blocks, _ := fields.Get("blocks")
	if _, ok := blocks.Layouts.Get("hero"); !ok {
		t.Fatalf("expected hero layout from sequence form")
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		fields Fields
		want   error
	}{
		{
			name:   "valid",
			fields: NewFields(Field("a", FieldConfig{Type: "text"})),
		},
		{
			name:   "missing type",
			fields: NewFields(Field("a", FieldConfig{})),
			want:   ErrMissingType,
		},
		{
			name: "missing operator",
			fields: NewFields(Field("a", FieldConfig{
				Type:        "text",
				Conditional: &Conditional{Field: "b"},
			})),
			want: ErrInvalidConditional,
		},
		{
			name: "nested missing field",
			fields: NewFields(Field("items", FieldConfig{
				Type: "repeater",
				Fields: NewFields(Field("a", FieldConfig{
					Type:        "text",
					Conditional: &Conditional{Operator: "=="},
				})),
			})),
			want: ErrInvalidConditional,
		},
		{
			name: "layout missing type",
			fields: NewFields(Field("blocks", FieldConfig{
				Type:    "flexible",
				Layouts: Layouts{{Name: "hero", Fields: NewFields(Field("h", FieldConfig{}))}},
			})),
			want: ErrMissingType,
		},
		{
			name: "unknown operator is not a config error",
			fields: NewFields(Field("a", FieldConfig{
				Type:        "text",
				Conditional: &Conditional{Field: "b", Operator: "~="},
			})),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Check(tc.fields)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLabelFor(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"cta_text":   "Cta Text",
		"ctaText":    "Cta Text",
		"address2":   "Address 2",
		"first-name": "First Name",
	}
	for name, want := range cases {
		if got := (FieldConfig{}).LabelFor(name); got != want {
			t.Fatalf("LabelFor(%q) = %q, want %q", name, got, want)
		}
	}
	if got := (FieldConfig{Label: "Custom"}).LabelFor("x"); got != "Custom" {
		t.Fatalf("expected explicit label, got %q", got)
	}
}
