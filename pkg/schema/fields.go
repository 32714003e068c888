package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"sort"

	"gopkg.in/yaml.v3"
)

// Fields is an ordered name → FieldConfig map. Iteration follows insertion
// (authoring) order, which drives render order and error order.
type Fields struct {
	names  []string
	byName map[string]FieldConfig
}

// Entry pairs a field name with its configuration for NewFields.
type Entry struct {
	Name   string
	Config FieldConfig
}

// Field builds an Entry.
func Field(name string, cfg FieldConfig) Entry {
	return Entry{Name: name, Config: cfg}
}

// NewFields builds an ordered map from entries. A repeated name replaces the
// earlier configuration but keeps its original position.
func NewFields(entries ...Entry) Fields {
	var out Fields
	for _, entry := range entries {
		out.Set(entry.Name, entry.Config)
	}
	return out
}

// FromMap builds Fields from an unordered map, ordering names alphabetically.
func FromMap(m map[string]FieldConfig) Fields {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var out Fields
	for _, name := range names {
		out.Set(name, m[name])
	}
	return out
}

// Set inserts or replaces a field.
func (f *Fields) Set(name string, cfg FieldConfig) {
	if f.byName == nil {
		f.byName = make(map[string]FieldConfig)
	}
	if _, exists := f.byName[name]; !exists {
		f.names = append(f.names, name)
	}
	f.byName[name] = cfg
}

// Get returns the configuration for name.
func (f Fields) Get(name string) (FieldConfig, bool) {
	cfg, ok := f.byName[name]
	return cfg, ok
}

// Has reports whether name is defined.
func (f Fields) Has(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// Names returns the field names in order.
func (f Fields) Names() []string {
	return append([]string(nil), f.names...)
}

// Len returns the number of fields.
func (f Fields) Len() int {
	return len(f.names)
}

// IsZero reports an empty map so encoders can omit it.
func (f Fields) IsZero() bool {
	return len(f.names) == 0
}

// All iterates fields in order.
func (f Fields) All() iter.Seq2[string, FieldConfig] {
	return func(yield func(string, FieldConfig) bool) {
		for _, name := range f.names {
			if !yield(name, f.byName[name]) {
				return
			}
		}
	}
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	*f = Fields{}
	return decodeOrderedJSON(data, func(key string, dec *json.Decoder) error {
		var cfg FieldConfig
		if err := dec.Decode(&cfg); err != nil {
			return fmt.Errorf("schema: field %q: %w", key, err)
		}
		f.Set(key, cfg)
		return nil
	})
}

// MarshalJSON encodes the map as a JSON object in field order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.byName[name])
		if err != nil {
			return nil, fmt.Errorf("schema: field %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the map as a YAML mapping in field order.
func (f Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range f.names {
		value := &yaml.Node{}
		if err := value.Encode(f.byName[name]); err != nil {
			return nil, fmt.Errorf("schema: field %q: %w", name, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, value)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping keeping key order.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	*f = Fields{}
	return decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
		var cfg FieldConfig
		if err := value.Decode(&cfg); err != nil {
			return fmt.Errorf("schema: field %q: %w", key, err)
		}
		f.Set(key, cfg)
		return nil
	})
}

// Layouts is the ordered set of branches of a flexible field.
type Layouts []Layout

// Get returns the layout called name.
func (l Layouts) Get(name string) (Layout, bool) {
	for _, layout := range l {
		if layout.Name == name {
			return layout, true
		}
	}
	return Layout{}, false
}

// Names returns the layout names in order.
func (l Layouts) Names() []string {
	out := make([]string, len(l))
	for i, layout := range l {
		out[i] = layout.Name
	}
	return out
}

// UnmarshalJSON accepts either an object keyed by layout name or a list of
// layouts carrying their own names.
func (l *Layouts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Layout
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("schema: layouts: %w", err)
		}
		*l = list
		return nil
	}
	*l = nil
	return decodeOrderedJSON(data, func(key string, dec *json.Decoder) error {
		var layout Layout
		if err := dec.Decode(&layout); err != nil {
			return fmt.Errorf("schema: layout %q: %w", key, err)
		}
		layout.Name = key
		*l = append(*l, layout)
		return nil
	})
}

// MarshalJSON encodes the layouts as an object keyed by name.
func (l Layouts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, layout := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(layout.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(struct {
			Label  string `json:"label,omitempty"`
			Fields Fields `json:"fields,omitzero"`
		}{Label: layout.Label, Fields: layout.Fields})
		if err != nil {
			return nil, fmt.Errorf("schema: layout %q: %w", layout.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (l *Layouts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []Layout
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("schema: layouts: %w", err)
		}
		*l = list
		return nil
	}
	*l = nil
	return decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
		var layout Layout
		if err := value.Decode(&layout); err != nil {
			return fmt.Errorf("schema: layout %q: %w", key, err)
		}
		layout.Name = key
		*l = append(*l, layout)
		return nil
	})
}

func decodeOrderedJSON(data []byte, each func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("schema: expected object key, got %v", keyTok)
		}
		if err := each(key, dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func decodeOrderedYAML(node *yaml.Node, each func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("schema: line %d: expected mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := each(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
