// Package ui implements the mutable element tree produced by the form engine.
// Nodes behave like a minimal DOM: they hold attributes and live control
// state, know their parent, dispatch bubbling events and serialise to HTML.
package ui

import (
	"strings"
)

// Attr is a single element attribute. Attribute order is preserved so that
// serialisation is deterministic.
type Attr struct {
	Key   string
	Value string
}

// Node is an element in the UI tree.
type Node struct {
	Tag  string
	Text string

	// Value, Checked and Selected hold live control state, the equivalent of
	// DOM properties rather than attributes.
	Value    string
	Checked  bool
	Selected bool

	// Data carries component state owned by whatever rendered the node.
	Data any

	attrs     []Attr
	children  []*Node
	parent    *Node
	listeners map[string][]Listener
}

// New creates a detached element.
func New(tag string) *Node {
	return &Node{Tag: strings.ToLower(strings.TrimSpace(tag))}
}

// El creates an element with attribute key/value pairs. A trailing key
// without a value is set as a boolean attribute.
func El(tag string, pairs ...string) *Node {
	node := New(tag)
	for i := 0; i < len(pairs); i += 2 {
		if i+1 < len(pairs) {
			node.SetAttr(pairs[i], pairs[i+1])
			continue
		}
		node.SetAttr(pairs[i], "")
	}
	return node
}

// TextNode returns an element whose only content is text.
func TextNode(tag, text string) *Node {
	node := New(tag)
	node.Text = text
	return node
}

// SetAttr sets or replaces an attribute and returns the node for chaining.
func (n *Node) SetAttr(key, value string) *Node {
	key = strings.TrimSpace(key)
	if key == "" {
		return n
	}
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Value = value
			return n
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Value: value})
	return n
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// AttrValue returns the attribute value or an empty string.
func (n *Node) AttrValue(key string) string {
	value, _ := n.Attr(key)
	return value
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// RemoveAttr deletes an attribute if present.
func (n *Node) RemoveAttr(key string) *Node {
	for i, attr := range n.attrs {
		if attr.Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			break
		}
	}
	return n
}

// Attrs returns a copy of the attributes in insertion order.
func (n *Node) Attrs() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// AddClass appends class names that are not already present.
func (n *Node) AddClass(classes ...string) *Node {
	current := strings.Fields(n.AttrValue("class"))
	for _, class := range classes {
		for _, name := range strings.Fields(class) {
			if !containsString(current, name) {
				current = append(current, name)
			}
		}
	}
	if len(current) > 0 {
		n.SetAttr("class", strings.Join(current, " "))
	}
	return n
}

// HasClass reports whether class is part of the class attribute.
func (n *Node) HasClass(class string) bool {
	return containsString(strings.Fields(n.AttrValue("class")), class)
}

// SetText replaces the text content of the node.
func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// TextContent concatenates the text of the node and its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(node *Node) bool {
		b.WriteString(node.Text)
		return true
	})
	return b.String()
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
