package conditional

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MarJC5/slabs/pkg/schema"
)

func TestEvaluateOperators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		op      string
		value   any
		watched any
		want    bool
	}{
		{name: "greater", op: ">", value: 10, watched: 15, want: true},
		{name: "greater string number", op: ">", value: 10, watched: "15", want: true},
		{name: "greater not numeric", op: ">", value: 10, watched: "abc", want: false},
		{name: "less equal", op: "<=", value: 10, watched: 10.0, want: true},
		{name: "less nil", op: "<", value: 10, watched: nil, want: false},
		{name: "greater equal", op: ">=", value: "3", watched: 2, want: false},
		{name: "empty zero", op: "empty", watched: 0, want: false},
		{name: "empty false", op: "empty", watched: false, want: false},
		{name: "empty nil", op: "empty", watched: nil, want: true},
		{name: "empty blank", op: "empty", watched: "  ", want: true},
		{name: "empty slice", op: "empty", watched: []any{}, want: true},
		{name: "empty map", op: "empty", watched: map[string]any{}, want: true},
		{name: "not empty text", op: "not_empty", watched: "x", want: true},
		{name: "in miss", op: "in", value: []any{"a", "b"}, watched: "c", want: false},
		{name: "in hit case insensitive", op: "in", value: []any{"a", "b"}, watched: "B", want: true},
		{name: "in non array", op: "in", value: "abc", watched: "a", want: false},
		{name: "not in non array", op: "not_in", value: "abc", watched: "z", want: false},
		{name: "not in", op: "not_in", value: []string{"a"}, watched: "z", want: true},
		{name: "equal nil nil", op: "==", value: nil, watched: nil, want: true},
		{name: "equal nil text", op: "==", value: "", watched: nil, want: false},
		{name: "not equal nil", op: "!=", value: "x", watched: nil, want: true},
		{name: "equal bool true", op: "==", value: true, watched: true, want: true},
		{name: "equal bool string", op: "==", value: true, watched: "true", want: true},
		{name: "equal bool truthy", op: "==", value: true, watched: "yes", want: true},
		{name: "equal bool false", op: "==", value: true, watched: false, want: false},
		{name: "equal bool nonempty false text", op: "==", value: true, watched: "false", want: true},
		{name: "equal bool zero text", op: "==", value: true, watched: "0", want: true},
		{name: "equal bool blank text", op: "==", value: true, watched: " ", want: false},
		{name: "equal false zero", op: "==", value: false, watched: 0, want: true},
		{name: "equal numbers", op: "==", value: 3, watched: 3.0, want: true},
		{name: "equal numeric string", op: "==", value: 3, watched: "3", want: true},
		{name: "equal case insensitive", op: "==", value: "Hello", watched: "hello", want: true},
		{name: "not equal", op: "!=", value: "a", watched: "b", want: true},
		{name: "contains array", op: "contains", value: "red", watched: []any{"red", "blue"}, want: true},
		{name: "contains substring", op: "contains", value: "ELL", watched: "hello", want: true},
		{name: "not contains", op: "not_contains", value: "x", watched: "hello", want: true},
		{name: "contains nil", op: "contains", value: "x", watched: nil, want: false},
		{name: "unknown operator", op: "~=", value: 1, watched: 2, want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cond := &schema.Conditional{Field: "q", Operator: tc.op, Value: tc.value}
			if got := Evaluate(cond, tc.watched); got != tc.want {
				t.Fatalf("Evaluate(%s %v, %#v) = %v, want %v", tc.op, tc.value, tc.watched, got, tc.want)
			}
		})
	}
}

func TestEvaluateNilRule(t *testing.T) {
	t.Parallel()

	if !Evaluate(nil, "anything") {
		t.Fatalf("nil rule must be visible")
	}
	if len(Operators()) != 12 || !Known("not_in") || Known("~=") {
		t.Fatalf("unexpected operator set")
	}
}

func chainSchema() schema.Fields {
	return schema.NewFields(
		schema.Field("a", schema.FieldConfig{Type: "boolean"}),
		schema.Field("b", schema.FieldConfig{
			Type:        "text",
			Conditional: &schema.Conditional{Field: "a", Operator: "==", Value: true},
		}),
		schema.Field("c", schema.FieldConfig{
			Type:        "text",
			Conditional: &schema.Conditional{Field: "b", Operator: "not_empty"},
		}),
		schema.Field("orphan", schema.FieldConfig{
			Type:        "text",
			Conditional: &schema.Conditional{Field: "missing", Operator: "empty"},
		}),
	)
}

func TestResolveCascadesChains(t *testing.T) {
	t.Parallel()

	fields := chainSchema()

	got := Resolve(fields, map[string]any{"a": true, "b": "x"})
	want := map[string]bool{"a": true, "b": true, "c": true, "orphan": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}

	// b still holds text but is hidden, so c sees nil.
	got = Resolve(fields, map[string]any{"a": false, "b": "x"})
	want = map[string]bool{"a": true, "b": false, "c": false, "orphan": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCycleFailsOpen(t *testing.T) {
	t.Parallel()

	fields := schema.NewFields(
		schema.Field("x", schema.FieldConfig{
			Type:        "text",
			Conditional: &schema.Conditional{Field: "y", Operator: "not_empty"},
		}),
		schema.Field("y", schema.FieldConfig{
			Type:        "text",
			Conditional: &schema.Conditional{Field: "x", Operator: "not_empty"},
		}),
	)
	got := Resolve(fields, map[string]any{"x": "1", "y": "2"})
	if !got["x"] || !got["y"] {
		t.Fatalf("expected cycle to stay visible, got %v", got)
	}
}

func TestDependentsAffected(t *testing.T) {
	t.Parallel()

	index := Dependents(chainSchema())
	if diff := cmp.Diff([]string{"b", "c"}, index.Affected("a")); diff != "" {
		t.Fatalf("affected mismatch (-want +got):\n%s", diff)
	}
	if got := index.Affected("c"); len(got) != 0 {
		t.Fatalf("expected no dependents for c, got %v", got)
	}
	if diff := cmp.Diff([]string{"orphan"}, index["missing"]); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}
}
