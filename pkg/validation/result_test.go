package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuilderResult(t *testing.T) {
	t.Parallel()

	var b Builder
	if got := b.Result(); !got.Valid || got.FieldErrors != nil || len(got.Errors) != 0 {
		t.Fatalf("expected empty valid result, got %+v", got)
	}

	b.Add("title", New("Title", CodeRequired, "Title is required"))
	b.Add("body")
	b.Add("items", Nest(RowLabel("Items", 1), []Error{New("Name", CodeRequired, "Name is required")})...)

	got := b.Result()
	want := Result{
		Valid: false,
		Errors: []Error{
			{Field: "Title", Message: "Title is required", Code: CodeRequired},
			{Field: "Items #2 › Name", Message: "Name is required", Code: CodeRequired},
		},
		FieldErrors: map[string][]Error{
			"title": {{Field: "Title", Message: "Title is required", Code: CodeRequired}},
			"items": {{Field: "Items #2 › Name", Message: "Name is required", Code: CodeRequired}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if got.Valid != (len(got.Errors) == 0) {
		t.Fatalf("valid flag out of sync")
	}
	if len(got.For("body")) != 0 {
		t.Fatalf("expected no errors for body")
	}
}
