package ui

import (
	"html"
	"io"
	"strings"
)

var voidElements = map[string]struct{}{
	"area": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "wbr": {},
}

// HTML serialises the node, reflecting live control state (value, checked,
// selected) into attributes.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

// WriteHTML streams the serialised node to w.
func (n *Node) WriteHTML(w io.Writer) error {
	_, err := io.WriteString(w, n.HTML())
	return err
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		b.WriteString(html.EscapeString(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, attr := range n.renderAttrs() {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		if attr.Value != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(attr.Value))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')

	if _, void := voidElements[n.Tag]; void {
		return
	}

	if n.Tag == "textarea" {
		b.WriteString(html.EscapeString(n.Value))
	} else {
		b.WriteString(html.EscapeString(n.Text))
	}
	for _, child := range n.children {
		child.writeHTML(b)
	}

	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func (n *Node) renderAttrs() []Attr {
	attrs := make([]Attr, 0, len(n.attrs)+2)
	for _, attr := range n.attrs {
		switch attr.Key {
		case "value", "checked", "selected":
			continue
		}
		attrs = append(attrs, attr)
	}
	switch n.Tag {
	case "input":
		inputType := n.AttrValue("type")
		if inputType == "checkbox" || inputType == "radio" {
			if value, ok := n.Attr("value"); ok {
				attrs = append(attrs, Attr{Key: "value", Value: value})
			}
			if n.Checked {
				attrs = append(attrs, Attr{Key: "checked"})
			}
		} else if n.Value != "" {
			attrs = append(attrs, Attr{Key: "value", Value: n.Value})
		}
	case "option":
		if value, ok := n.Attr("value"); ok {
			attrs = append(attrs, Attr{Key: "value", Value: value})
		}
		if n.Selected {
			attrs = append(attrs, Attr{Key: "selected"})
		}
	case "button", "li", "data", "meter", "progress", "param":
		if value, ok := n.Attr("value"); ok {
			attrs = append(attrs, Attr{Key: "value", Value: value})
		}
	}
	return attrs
}
