// Package openapi imports form schemas from the request bodies of OpenAPI 3
// operations.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/schema"
)

var (
	// ErrOperationNotFound is returned when no operation matches the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object request body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

// Operation summarises an operation of the document.
type Operation struct {
	ID          string `json:"id"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Summary     string `json:"summary,omitempty"`
	HasBody     bool   `json:"hasBody"`
	description string
	body        *openapi3.SchemaRef
}

// Importer converts OpenAPI operations into schema documents.
type Importer struct {
	externalRefs bool
	validate     bool
	logger       *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithExternalRefs allows $ref pointers to other documents.
func WithExternalRefs(enabled bool) Option {
	return func(i *Importer) {
		i.externalRefs = enabled
	}
}

// WithValidation validates the whole document before importing.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// WithLogger sets the logger used to report skipped properties.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New constructs an Importer.
func New(opts ...Option) *Importer {
	i := &Importer{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Operations lists the operations of an OpenAPI document (JSON or YAML),
// sorted by id. Operations without an operationId are named "method:path".
func (i *Importer) Operations(ctx context.Context, data []byte) ([]Operation, error) {
	spec, err := i.load(ctx, data)
	if err != nil {
		return nil, err
	}
	return collectOperations(spec), nil
}

// Import builds a schema document from the request body of operationID.
func (i *Importer) Import(ctx context.Context, data []byte, operationID string) (schema.Document, error) {
	spec, err := i.load(ctx, data)
	if err != nil {
		return schema.Document{}, err
	}

	for _, op := range collectOperations(spec) {
		if op.ID != operationID {
			continue
		}
		if op.body == nil {
			return schema.Document{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
		}
		conv := converter{logger: i.logger, seen: map[*openapi3.Schema]bool{}}
		fields, ok := conv.object(op.body, 0)
		if !ok {
			return schema.Document{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
		}
		if err := schema.Check(fields); err != nil {
			return schema.Document{}, fmt.Errorf("openapi: %q: %w", operationID, err)
		}
		return schema.Document{
			Name:        op.ID,
			Title:       op.Summary,
			Description: op.description,
			Fields:      fields,
		}.WithSource(schema.SourceInline("openapi:" + op.ID)), nil
	}
	return schema.Document{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
}

func (i *Importer) load(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.externalRefs,
	}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return spec, nil
}

func collectOperations(spec *openapi3.T) []Operation {
	var out []Operation
	if spec.Paths == nil {
		return out
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			body := requestSchema(op.RequestBody)
			out = append(out, Operation{
				ID:          id,
				Method:      strings.ToUpper(method),
				Path:        path,
				Summary:     op.Summary,
				HasBody:     body != nil,
				description: op.Description,
				body:        body,
			})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// requestSchema picks the request body schema, preferring form-friendly media
// types.
func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}
