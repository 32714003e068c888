// Package form renders a field schema into a UI tree, extracts values back out
// of that tree and validates value maps, honouring conditional visibility.
// Composite field types (repeater, flexible, group, tabs) live here because
// they drive a nested Engine for their sub-schemas.
package form

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

// Attributes forming the addressing contract between render and extract.
const (
	AttrForm         = "data-slabs-form"
	AttrFormID       = "data-form-id"
	AttrFieldName    = "data-field-name"
	AttrFieldType    = "data-field-type"
	AttrFieldControl = "data-field-control"
	AttrErrorSlot    = "data-error-slot"
	AttrRenderError  = "data-render-error"
	AttrNestedRoot   = "data-nested-root"
	AttrRowIndex     = "data-row-index"
	AttrLayout       = "data-layout"
	AttrAction       = "data-action"
	AttrInvalid      = "data-invalid"
)

// DefaultContainerClass is applied to every render root.
const DefaultContainerClass = "slabs-form"

// Engine runs the render, extract and validate passes against one registry.
type Engine struct {
	registry       *fields.Registry
	logger         *zap.Logger
	containerClass string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for render faults and visibility updates.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDefaultContainerClass adds a class to every render root produced by the
// engine, in addition to DefaultContainerClass.
func WithDefaultContainerClass(class string) Option {
	return func(e *Engine) {
		e.containerClass = strings.TrimSpace(class)
	}
}

// New builds an Engine. A nil registry is replaced by NewDefaultRegistry.
func New(registry *fields.Registry, opts ...Option) *Engine {
	engine := &Engine{
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	if engine.registry == nil {
		engine.registry = NewDefaultRegistry(WithLogger(engine.logger))
	}
	return engine
}

// Registry exposes the registry the engine resolves types against.
func (e *Engine) Registry() *fields.Registry {
	return e.registry
}

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// Check reports configuration errors: structural schema defects, types that
// do not resolve in the registry, and handler-specific config errors
// (including those of nested composite schemas).
func (e *Engine) Check(defs schema.Fields) error {
	if err := schema.Check(defs); err != nil {
		return err
	}
	for name, cfg := range defs.All() {
		handler, err := e.registry.Get(cfg.Type)
		if err != nil {
			return fmt.Errorf("form: field %q: %w", name, err)
		}
		if checker, ok := handler.(fields.ConfigChecker); ok {
			if err := checker.CheckConfig(cfg); err != nil {
				return fmt.Errorf("form: field %q: %w", name, err)
			}
		}
	}
	return nil
}

// NewDefaultRegistry returns a registry holding every built-in handler,
// composites included. Options are forwarded to the nested engines that
// composite handlers build on first use.
func NewDefaultRegistry(opts ...Option) *fields.Registry {
	return newRegistry(opts)
}

// newRegistry seeds a registry with the leaf handlers and with fresh composite
// handlers whose type name is not excluded.
func newRegistry(opts []Option, exclude ...string) *fields.Registry {
	registry := fields.NewLeafRegistry(exclude...)
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}
	add := func(name string, handler fields.Handler) {
		if _, ok := skip[name]; ok {
			return
		}
		registry.MustRegister(name, handler)
	}

	repeater := NewRepeater(opts...)
	add(TypeRepeater, repeater)
	add(TypeRepeated, repeater)
	add(TypeFlexible, NewFlexible(opts...))
	add(TypeGroup, NewGroup(opts...))
	add(TypeTabs, NewTabs(opts...))
	return registry
}

// nestedEngine lazily builds the private engine of a composite handler. The
// registry excludes the composite's own type names so a schema cannot nest a
// composite directly inside itself.
type nestedEngine struct {
	once    sync.Once
	opts    []Option
	exclude []string
	engine  *Engine
}

func (n *nestedEngine) get() *Engine {
	n.once.Do(func() {
		n.engine = New(newRegistry(n.opts, n.exclude...), n.opts...)
	})
	return n.engine
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns a process-wide engine over NewDefaultRegistry. It is a
// convenience for simple call sites; the API never requires it.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(nil)
	})
	return defaultEngine
}

// Render renders with the default engine.
func Render(defs schema.Fields, data map[string]any, opts ...RenderOption) (*ui.Node, error) {
	return Default().Render(defs, data, opts...)
}

// Extract extracts with the default engine.
func Extract(root *ui.Node, defs schema.Fields) (map[string]any, error) {
	return Default().Extract(root, defs)
}

// Validate validates with the default engine.
func Validate(defs schema.Fields, data map[string]any) (validation.Result, error) {
	return Default().Validate(defs, data)
}
