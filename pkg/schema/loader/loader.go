// Package loader reads schema documents from files, fs.FS trees or HTTP and
// decodes them from JSON, YAML or CUE.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/schema"
)

// ErrNotFound is returned by Catalog.Get for an unknown document name.
var ErrNotFound = errors.New("loader: schema not found")

// Loader fetches schema documents. It is safe for concurrent use.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the file system used for SourceKindFS sources and LoadDir.
func WithFS(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables SourceKindURL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			clone := *client
			l.http = &clone
		}
	}
}

// WithRequestTimeout bounds each HTTP fetch.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// WithLogger sets the logger used to report skipped files.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New constructs a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load fetches and decodes a single document. The format is chosen from the
// location's extension; a document without a name is named after its file.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if l.http == nil {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, err
	}

	doc, err := Decode(FormatOf(src.Location()), src.Location(), data)
	if err != nil {
		return schema.Document{}, err
	}
	return doc.WithSource(src), nil
}

// LoadDir decodes every schema file under root in the loader's fs.FS, sorted by
// document name. Files with other extensions are ignored.
func (l *Loader) LoadDir(ctx context.Context, root string) ([]schema.Document, error) {
	if l.fs == nil {
		return nil, errors.New("loader: fs is nil")
	}
	if root == "" {
		root = "."
	}

	var docs []schema.Document
	err := fs.WalkDir(l.fs, root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if FormatOf(name) == "" {
			l.logger.Debug("skipping non-schema file", zap.String("path", name))
			return nil
		}
		doc, err := l.Load(ctx, schema.SourceFromFS(name))
		if err != nil {
			return fmt.Errorf("loader: %s: %w", name, err)
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	for i := 1; i < len(docs); i++ {
		if docs[i].Name == docs[i-1].Name {
			return nil, fmt.Errorf("loader: duplicate schema name %q (%s, %s)",
				docs[i].Name, docs[i-1].Location(), docs[i].Location())
		}
	}
	return docs, nil
}

// Catalog indexes documents by name.
type Catalog struct {
	docs  map[string]schema.Document
	names []string
}

// NewCatalog builds a catalog from docs.
func NewCatalog(docs []schema.Document) *Catalog {
	c := &Catalog{docs: make(map[string]schema.Document, len(docs))}
	for _, doc := range docs {
		if _, exists := c.docs[doc.Name]; !exists {
			c.names = append(c.names, doc.Name)
		}
		c.docs[doc.Name] = doc
	}
	sort.Strings(c.names)
	return c
}

// Get returns the named document.
func (c *Catalog) Get(name string) (schema.Document, error) {
	doc, ok := c.docs[name]
	if !ok {
		return schema.Document{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return doc, nil
}

// Names returns the document names in sorted order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

func baseName(location string) string {
	base := path.Base(strings.ReplaceAll(location, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
