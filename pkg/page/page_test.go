package page

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/google/go-cmp/cmp"

	"github.com/MarJC5/slabs/pkg/ui"
)

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "radius": "4px"},
		Assets: theme.Assets{
			Prefix: "/assets/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Assets: theme.Assets{Files: map[string]string{"stylesheet": "dark.css"}},
			},
		},
	}
}

func sampleForm() *ui.Node {
	root := ui.El("div", "class", "slabs-form")
	input := ui.El("input", "type", "text", "name", "title")
	input.Value = "Hello"
	return root.Append(input)
}

func TestRenderDefaultTemplate(t *testing.T) {
	t.Parallel()

	r, err := New(WithStylesheet("/static/slabs.css"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var out strings.Builder
	err = r.Render(&out, Data{
		Title:       "Contact <us>",
		Description: `<p>Reach us <script>alert(1)</script><a href="https://example.com">here</a></p>`,
		Form:        sampleForm(),
		Action:      "/submit",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := out.String()

	for _, want := range []string{
		"<title>Contact &lt;us&gt;</title>",
		`<link rel="stylesheet" href="/static/slabs.css">`,
		`<div class="slabs-form"><input type="text" name="title" value="Hello"></div>`,
		`action="/submit"`,
		`<a href="https://example.com"`,
		">Submit</button>",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in page:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("description should be sanitised:\n%s", html)
	}
}

func TestRenderWithTheme(t *testing.T) {
	t.Parallel()

	selector, err := NewStaticSelector("", "", acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	r, err := New(WithThemeSelector(selector), WithTheme("acme", "dark"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var out strings.Builder
	if err := r.Render(&out, Data{Title: "Themed", Form: sampleForm()}); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := out.String()
	for _, want := range []string{
		`href="/assets/acme/dark.css"`,
		"--brand:#654321;--radius:4px;",
		"slabs-theme--acme slabs-theme--dark",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in page:\n%s", want, html)
		}
	}
}

func TestTemplateOverride(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"page.html": {Data: []byte(`<section>{{ title }}|{{ form|safe }}</section>`)},
	}
	r, err := New(WithTemplates(files))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var out strings.Builder
	if err := r.Render(&out, Data{Title: "Custom", Form: ui.El("div")}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := out.String(), "<section>Custom|<div></div></section>"; got != want {
		t.Fatalf("unexpected output %q, want %q", got, want)
	}

	if _, err := New(WithTemplateName("  ")); err == nil {
		t.Fatalf("expected error for empty template name")
	}
}

func TestRenderRequiresForm(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := r.Render(&strings.Builder{}, Data{Title: "x"}); err == nil {
		t.Fatalf("expected error without a form")
	}
}

func TestStaticSelector(t *testing.T) {
	t.Parallel()

	selector, err := NewStaticSelector("", "", acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select default: %v", err)
	}
	if selection.Theme != "acme" || selection.Variant != "" {
		t.Fatalf("unexpected selection %+v", selection)
	}
	if _, err := selector.Select("acme", "neon"); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound for variant, got %v", err)
	}
	if _, err := selector.Select("other", ""); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if err := selector.Register(acmeManifest()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}

	cfg := RendererConfig(selection)
	want := map[string]string{"--brand": "#123456", "--radius": "4px"}
	if diff := cmp.Diff(want, cfg.CSSVars); diff != "" {
		t.Fatalf("unexpected css vars (-want +got):\n%s", diff)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/acme/theme.css" {
		t.Fatalf("unexpected asset url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
}
