package openapi

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/fields"
	"github.com/MarJC5/slabs/pkg/form"
	"github.com/MarJC5/slabs/pkg/schema"
)

// Vendor extensions understood on property schemas.
const (
	extType        = "x-slabs-type"
	extLabel       = "x-slabs-label"
	extPlaceholder = "x-slabs-placeholder"
	extOrder       = "x-slabs-order"
	extRows        = "x-slabs-rows"
	extConditional = "x-slabs-conditional"
	extHidden      = "x-slabs-hidden"
)

// longTextThreshold switches strings with a larger maxLength to textareas.
const longTextThreshold = 255

const maxDepth = 8

type converter struct {
	logger *zap.Logger
	seen   map[*openapi3.Schema]bool
}

type property struct {
	name  string
	ref   *openapi3.SchemaRef
	order float64
}

// object converts an object schema (allOf members merged) into ordered fields.
// Properties are ordered by x-slabs-order, then by name.
func (c *converter) object(ref *openapi3.SchemaRef, depth int) (schema.Fields, bool) {
	if ref == nil || ref.Value == nil || depth > maxDepth {
		return schema.Fields{}, false
	}
	src := ref.Value
	if c.seen[src] {
		c.logger.Debug("skipping recursive schema", zap.String("ref", ref.Ref))
		return schema.Fields{}, false
	}
	c.seen[src] = true
	defer delete(c.seen, src)

	props, required := collectProperties(src)
	if len(props) == 0 {
		return schema.Fields{}, false
	}

	list := make([]property, 0, len(props))
	for name, prop := range props {
		order, ok := coerce.Number(extension(prop, extOrder))
		if !ok {
			order = float64(1 << 30)
		}
		list = append(list, property{name: name, ref: prop, order: order})
	}
	sort.Slice(list, func(a, b int) bool {
		if list[a].order != list[b].order {
			return list[a].order < list[b].order
		}
		return list[a].name < list[b].name
	})

	var out schema.Fields
	for _, prop := range list {
		cfg, ok := c.field(prop.ref, depth+1)
		if !ok {
			c.logger.Debug("skipping unsupported property", zap.String("property", prop.name))
			continue
		}
		cfg.Required = required[prop.name] && cfg.Type != fields.TypeHidden
		out.Set(prop.name, cfg)
	}
	return out, out.Len() > 0
}

func collectProperties(src *openapi3.Schema) (map[string]*openapi3.SchemaRef, map[string]bool) {
	props := make(map[string]*openapi3.SchemaRef, len(src.Properties))
	required := make(map[string]bool, len(src.Required))
	var walk func(s *openapi3.Schema, depth int)
	walk = func(s *openapi3.Schema, depth int) {
		if s == nil || depth > maxDepth {
			return
		}
		for name, prop := range s.Properties {
			props[name] = prop
		}
		for _, name := range s.Required {
			required[name] = true
		}
		for _, member := range s.AllOf {
			if member != nil {
				walk(member.Value, depth+1)
			}
		}
	}
	walk(src, 0)
	return props, required
}

// field maps a property schema to a field config. ok is false for shapes with
// no form equivalent.
func (c *converter) field(ref *openapi3.SchemaRef, depth int) (schema.FieldConfig, bool) {
	if ref == nil || ref.Value == nil {
		return schema.FieldConfig{}, false
	}
	src := ref.Value
	cfg := schema.FieldConfig{
		Label:        firstString(extension(ref, extLabel), src.Title),
		Description:  src.Description,
		Placeholder:  coerce.String(extension(ref, extPlaceholder)),
		DefaultValue: src.Default,
		Pattern:      src.Pattern,
		Min:          src.Min,
		Max:          src.Max,
	}
	if src.MinLength > 0 {
		v := int(src.MinLength)
		cfg.MinLength = &v
	}
	if src.MaxLength != nil {
		v := int(*src.MaxLength)
		cfg.MaxLength = &v
	}
	if rows, ok := coerce.Number(extension(ref, extRows)); ok {
		cfg.Rows = int(rows)
	}
	if cond, ok := conditionalExtension(extension(ref, extConditional)); ok {
		cfg.Conditional = cond
	}

	override := coerce.String(extension(ref, extType))
	switch {
	case coerce.Bool(extension(ref, extHidden)):
		cfg.Type = fields.TypeHidden
	case len(src.Enum) > 0:
		cfg.Type = fields.TypeSelect
		cfg.Options = enumOptions(src.Enum)
	default:
		switch schemaType(src) {
		case openapi3.TypeString:
			cfg.Type = stringType(src)
		case openapi3.TypeInteger:
			cfg.Type = fields.TypeNumber
			step := 1.0
			cfg.Step = &step
		case openapi3.TypeNumber:
			cfg.Type = fields.TypeNumber
		case openapi3.TypeBoolean:
			cfg.Type = fields.TypeBoolean
		case openapi3.TypeArray:
			if !c.array(&cfg, src, depth) {
				return schema.FieldConfig{}, false
			}
		case openapi3.TypeObject:
			nested, ok := c.object(ref, depth)
			if !ok {
				return schema.FieldConfig{}, false
			}
			cfg.Type = form.TypeGroup
			cfg.Fields = nested
		default:
			if len(src.Properties) > 0 || len(src.AllOf) > 0 {
				nested, ok := c.object(ref, depth)
				if !ok {
					return schema.FieldConfig{}, false
				}
				cfg.Type = form.TypeGroup
				cfg.Fields = nested
				break
			}
			if override == "" {
				return schema.FieldConfig{}, false
			}
		}
	}
	if override != "" {
		cfg.Type = override
	}
	if cfg.Type == fields.TypeWysiwyg {
		// Patterns match markup, not the text a rich-text field validates.
		cfg.Pattern = ""
	}
	return cfg, true
}

func (c *converter) array(cfg *schema.FieldConfig, src *openapi3.Schema, depth int) bool {
	items := src.Items
	if items == nil || items.Value == nil {
		return false
	}
	var minItems, maxItems *float64
	if src.MinItems > 0 {
		v := float64(src.MinItems)
		minItems = &v
	}
	if src.MaxItems != nil {
		v := float64(*src.MaxItems)
		maxItems = &v
	}

	if len(items.Value.Enum) > 0 {
		cfg.Type = fields.TypeCheckbox
		cfg.Options = enumOptions(items.Value.Enum)
		cfg.Min, cfg.Max = minItems, maxItems
		return true
	}
	nested, ok := c.object(items, depth)
	if !ok {
		return false
	}
	cfg.Type = form.TypeRepeater
	cfg.Fields = nested
	cfg.Min, cfg.Max = minItems, maxItems
	return true
}

func stringType(src *openapi3.Schema) string {
	switch src.Format {
	case "email":
		return fields.TypeEmail
	case "uri", "url":
		return fields.TypeURL
	case "date":
		return fields.TypeDate
	case "time":
		return fields.TypeTime
	case "color":
		return fields.TypeColor
	case "html":
		return fields.TypeWysiwyg
	}
	if src.MaxLength != nil && *src.MaxLength > longTextThreshold {
		return fields.TypeTextarea
	}
	return fields.TypeText
}

func schemaType(src *openapi3.Schema) string {
	if src.Type == nil {
		return ""
	}
	for _, typ := range src.Type.Slice() {
		if typ != openapi3.TypeNull {
			return typ
		}
	}
	return ""
}

func enumOptions(values []any) []schema.Option {
	options := make([]schema.Option, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		options = append(options, schema.Option{Value: coerce.String(value)})
	}
	return options
}

func extension(ref *openapi3.SchemaRef, key string) any {
	if ref == nil || ref.Value == nil || ref.Value.Extensions == nil {
		return nil
	}
	return ref.Value.Extensions[key]
}

func conditionalExtension(raw any) (*schema.Conditional, bool) {
	m, ok := coerce.Map(raw)
	if !ok {
		return nil, false
	}
	cond := &schema.Conditional{
		Field:    coerce.String(m["field"]),
		Operator: coerce.String(m["operator"]),
		Value:    m["value"],
	}
	if cond.Operator == "" {
		cond.Operator = "=="
	}
	if err := schema.CheckConditional(cond); err != nil {
		return nil, false
	}
	return cond, true
}

func firstString(values ...any) string {
	for _, value := range values {
		if s := coerce.String(value); s != "" {
			return s
		}
	}
	return ""
}

func (o Operation) String() string {
	return fmt.Sprintf("%s %s (%s)", o.Method, o.Path, o.ID)
}
