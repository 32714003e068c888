package coerce

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: true},
		{name: "blank string", value: "   ", want: true},
		{name: "string", value: "x", want: false},
		{name: "zero", value: 0, want: false},
		{name: "false", value: false, want: false},
		{name: "empty slice", value: []any{}, want: true},
		{name: "empty string slice", value: []string{}, want: true},
		{name: "slice", value: []any{"a"}, want: false},
		{name: "empty map", value: map[string]any{}, want: true},
		{name: "map", value: map[string]int{"a": 1}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Empty(tc.value); got != tc.want {
				t.Fatalf("Empty(%#v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	t.Parallel()

	if got, ok := Number(" 12.5 "); !ok || got != 12.5 {
		t.Fatalf("expected 12.5, got %v (%v)", got, ok)
	}
	if _, ok := Number("abc"); ok {
		t.Fatalf("expected abc to be non-numeric")
	}
	if _, ok := Number(""); ok {
		t.Fatalf("expected empty string to be non-numeric")
	}
	if got, ok := Number(int64(3)); !ok || got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	for _, value := range []any{"Inf", "-inf", "+Infinity", "NaN", math.Inf(1), math.NaN()} {
		if _, ok := Number(value); ok {
			t.Fatalf("expected %v to be rejected", value)
		}
	}
}

func TestBoolAndString(t *testing.T) {
	t.Parallel()

	if !Bool("TRUE") || Bool("false") || Bool("0") || !Bool("yes") {
		t.Fatalf("unexpected string bool coercion")
	}
	if String(3.0) != "3" || String(2.5) != "2.5" || String(nil) != "" || String(true) != "true" {
		t.Fatalf("unexpected string coercion")
	}
}

func TestSlice(t *testing.T) {
	t.Parallel()

	got, ok := Slice([]int{1, 2})
	if !ok {
		t.Fatalf("expected slice")
	}
	if diff := cmp.Diff([]any{1, 2}, got); diff != "" {
		t.Fatalf("slice mismatch (-want +got):\n%s", diff)
	}
	if _, ok := Slice("ab"); ok {
		t.Fatalf("string must not be treated as slice")
	}
}
