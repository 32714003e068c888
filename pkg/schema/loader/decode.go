package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/MarJC5/slabs/pkg/schema"
)

// Format names a schema encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf infers the format from a file name or URL. It returns "" for
// unsupported extensions.
func FormatOf(location string) Format {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	default:
		return ""
	}
}

// Decode parses a schema document. The payload is either a document object
// with a "fields" key (plus optional name, title and description) or a bare
// field map. name is used for error messages and as the fallback document
// name.
func Decode(format Format, name string, data []byte) (schema.Document, error) {
	var (
		doc schema.Document
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatYAML:
		doc, err = decodeYAML(data)
	case FormatCUE:
		doc, err = decodeCUE(name, data)
	default:
		return schema.Document{}, fmt.Errorf("loader: unsupported format for %q", name)
	}
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: decode %s: %w", name, err)
	}
	if doc.Name == "" {
		doc.Name = baseName(name)
	}
	if err := schema.Check(doc.Fields); err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s: %w", name, err)
	}
	return doc, nil
}

func decodeJSON(data []byte) (schema.Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return schema.Document{}, err
	}
	var doc schema.Document
	if _, ok := probe["fields"]; ok && isDocumentShape(probe["fields"]) {
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return schema.Document{}, err
		}
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc.Fields); err != nil {
		return schema.Document{}, err
	}
	return doc, nil
}

// isDocumentShape distinguishes a document's "fields" map from a field that
// happens to be called "fields", which would carry a "type" key.
func isDocumentShape(raw json.RawMessage) bool {
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(raw, &inner); err != nil {
		return false
	}
	_, hasType := inner["type"]
	return !hasType
}

func decodeYAML(data []byte) (schema.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return schema.Document{}, err
	}
	if len(root.Content) == 0 {
		return schema.Document{}, fmt.Errorf("empty document")
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return schema.Document{}, fmt.Errorf("expected a mapping, got %s", kindName(mapping.Kind))
	}

	var doc schema.Document
	if fields := mappingValue(mapping, "fields"); fields != nil && fields.Kind == yaml.MappingNode && mappingValue(fields, "type") == nil {
		if err := mapping.Decode(&doc); err != nil {
			return schema.Document{}, err
		}
		return doc, nil
	}
	if err := mapping.Decode(&doc.Fields); err != nil {
		return schema.Document{}, err
	}
	return doc, nil
}

// decodeCUE evaluates a CUE file and decodes its concrete JSON export. CUE
// keeps declaration order, so field order survives.
func decodeCUE(name string, data []byte) (schema.Document, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return schema.Document{}, err
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return schema.Document{}, err
	}
	exported, err := value.MarshalJSON()
	if err != nil {
		return schema.Document{}, err
	}
	return decodeJSON(exported)
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
