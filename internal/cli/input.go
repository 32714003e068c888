package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MarJC5/slabs/pkg/form"
	"github.com/MarJC5/slabs/pkg/page"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/schema/loader"
)

const fetchTimeout = 30 * time.Second

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func (a *app) engine() *form.Engine {
	return form.New(nil, form.WithLogger(a.logger), form.WithDefaultContainerClass(a.cfg.ContainerClass))
}

// loadDocument reads a schema from a file path or an http(s) URL.
func (a *app) loadDocument(ctx context.Context, location string) (schema.Document, error) {
	l := loader.New(
		loader.WithHTTPClient(http.DefaultClient),
		loader.WithRequestTimeout(fetchTimeout),
		loader.WithLogger(a.logger),
	)
	src := schema.SourceFromFile(location)
	if isURL(location) {
		src = schema.SourceFromURL(location)
	}
	doc, err := l.Load(ctx, src)
	if err != nil {
		return schema.Document{}, err
	}
	if err := a.engine().Check(doc.Fields); err != nil {
		return schema.Document{}, err
	}
	return doc, nil
}

// readBytes reads a local file or fetches an http(s) URL.
func readBytes(ctx context.Context, location string) ([]byte, error) {
	if !isURL(location) {
		return os.ReadFile(location)
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", location, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// readValues decodes a JSON or YAML object of field values. An empty path
// yields an empty map.
func readValues(path string) (map[string]any, error) {
	values := map[string]any{}
	if path == "" {
		return values, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch loader.FormatOf(path) {
	case loader.FormatYAML:
		err = yaml.Unmarshal(data, &values)
	default:
		err = json.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("values %s: %w", path, err)
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// output returns the command's stdout or the file named by the output flag.
// The returned close func must always be called.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// pageRenderer builds a page renderer for the configured theme. Themes are
// defined inline in the configuration as a token map.
func (a *app) pageRenderer(stylesheet string) (*page.Renderer, error) {
	opts := []page.Option{page.WithLogger(a.logger)}
	if stylesheet != "" {
		opts = append(opts, page.WithStylesheet(stylesheet))
	}
	if name := a.cfg.Theme.Name; name != "" {
		manifest := &theme.Manifest{Name: name, Tokens: a.cfg.Theme.Tokens}
		if variant := a.cfg.Theme.Variant; variant != "" {
			manifest.Variants = map[string]theme.Variant{variant: {}}
		}
		selector, err := page.NewStaticSelector(name, a.cfg.Theme.Variant, manifest)
		if err != nil {
			return nil, err
		}
		opts = append(opts, page.WithThemeSelector(selector), page.WithTheme(name, a.cfg.Theme.Variant))
	}
	return page.New(opts...)
}
