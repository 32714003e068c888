package schema

import "strings"

// Document is a named form schema as authored in a schema file.
type Document struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      Fields `json:"fields" yaml:"fields"`

	source Source
}

// WithSource returns a copy of d recording its origin.
func (d Document) WithSource(src Source) Document {
	d.source = src
	return d
}

// Source returns the origin of the document, if known.
func (d Document) Source() Source {
	return d.source
}

// Location returns the origin identifier or an empty string.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// DisplayTitle returns Title or a label derived from Name.
func (d Document) DisplayTitle() string {
	if title := strings.TrimSpace(d.Title); title != "" {
		return title
	}
	return DefaultLabeler(d.Name)
}
