// Package page wraps a rendered form in a complete HTML document using pongo2
// templates and go-theme selections.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/ui"
)

// DefaultTemplate is the page template looked up in the template FS.
const DefaultTemplate = "page.html"

// Data is the per-request input of a page.
type Data struct {
	Title       string
	Description string
	Form        *ui.Node
	Action      string
	SubmitLabel string
	Lang        string
}

// Renderer renders pages. It is safe for concurrent use.
type Renderer struct {
	mu         sync.RWMutex
	set        *pongo2.TemplateSet
	cache      map[string]*pongo2.Template
	template   string
	selector   theme.ThemeSelector
	themeName  string
	variant    string
	stylesheet string
	logger     *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer) error

// WithTemplates loads templates from files before falling back to the
// built-in ones, so a file named page.html overrides the default layout.
func WithTemplates(files fs.FS) Option {
	return func(r *Renderer) error {
		if files == nil {
			return errors.New("page: template fs is nil")
		}
		r.set = pongo2.NewSet("slabs", pongo2.NewFSLoader(files), pongo2.NewFSLoader(TemplatesFS()))
		return nil
	}
}

// WithTemplateName selects another template of the set.
func WithTemplateName(name string) Option {
	return func(r *Renderer) error {
		if strings.TrimSpace(name) == "" {
			return errors.New("page: template name is empty")
		}
		r.template = strings.TrimSpace(name)
		return nil
	}
}

// WithThemeSelector resolves themes through selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(r *Renderer) error {
		r.selector = selector
		return nil
	}
}

// WithTheme sets the theme and variant to select.
func WithTheme(name, variant string) Option {
	return func(r *Renderer) error {
		r.themeName = strings.TrimSpace(name)
		r.variant = strings.TrimSpace(variant)
		return nil
	}
}

// WithStylesheet sets the stylesheet URL linked from the page head. Theme
// assets registered under "stylesheet" take precedence.
func WithStylesheet(href string) Option {
	return func(r *Renderer) error {
		r.stylesheet = strings.TrimSpace(href)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// New builds a Renderer over the built-in templates.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		set:      pongo2.NewSet("slabs", pongo2.NewFSLoader(TemplatesFS())),
		cache:    make(map[string]*pongo2.Template),
		template: DefaultTemplate,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Theme resolves the configured theme. It returns nil when no selector is set.
func (r *Renderer) Theme() (*theme.RendererConfig, error) {
	if r.selector == nil {
		return nil, nil
	}
	selection, err := r.selector.Select(r.themeName, r.variant)
	if err != nil {
		return nil, fmt.Errorf("page: select theme %q: %w", r.themeName, err)
	}
	return RendererConfig(selection), nil
}

// Render writes the page for data to w.
func (r *Renderer) Render(w io.Writer, data Data) error {
	if data.Form == nil {
		return errors.New("page: form is nil")
	}
	cfg, err := r.Theme()
	if err != nil {
		return err
	}
	tmpl, err := r.lookup(r.template)
	if err != nil {
		return err
	}

	var form bytes.Buffer
	if err := data.Form.WriteHTML(&form); err != nil {
		return fmt.Errorf("page: write form: %w", err)
	}

	stylesheet := r.stylesheet
	themeCtx := pongo2.Context{}
	if cfg != nil {
		themeCtx["name"] = cfg.Theme
		themeCtx["variant"] = cfg.Variant
		themeCtx["tokens"] = cfg.Tokens
		themeCtx["css_vars"] = cssVarsStyle(cfg.CSSVars)
		if cfg.AssetURL != nil {
			if href := cfg.AssetURL("stylesheet"); href != "" {
				stylesheet = href
			}
		}
	}

	ctx := pongo2.Context{
		"title":        data.Title,
		"description":  fields.SanitizeHTML(data.Description),
		"form":         form.String(),
		"action":       data.Action,
		"submit_label": data.SubmitLabel,
		"lang":         data.Lang,
		"stylesheet":   stylesheet,
		"theme":        themeCtx,
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("page: execute %q: %w", r.template, err)
	}
	return nil
}

func (r *Renderer) lookup(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("page: load template %q: %w", name, err)
	}
	r.cache[name] = tmpl
	return tmpl, nil
}
