package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingType reports a field without a type.
	ErrMissingType = errors.New("schema: field type is required")
	// ErrInvalidConditional reports a conditional without a field or operator.
	ErrInvalidConditional = errors.New("schema: conditional requires field and operator")
)

// Check reports authoring defects in fields and in every nested composite
// schema. Type names are not resolved here; that is the registry's job.
func Check(fields Fields) error {
	return checkFields("", fields)
}

// CheckConditional validates a single rule.
func CheckConditional(cond *Conditional) error {
	if cond == nil {
		return nil
	}
	if strings.TrimSpace(cond.Field) == "" || strings.TrimSpace(cond.Operator) == "" {
		return ErrInvalidConditional
	}
	return nil
}

func checkFields(prefix string, fields Fields) error {
	for name, cfg := range fields.All() {
		path := joinPath(prefix, name)
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("schema: %q contains an empty field name", prefix)
		}
		if strings.TrimSpace(cfg.Type) == "" {
			return fmt.Errorf("%w (field %q)", ErrMissingType, path)
		}
		if err := CheckConditional(cfg.Conditional); err != nil {
			return fmt.Errorf("%w (field %q)", err, path)
		}
		if err := checkFields(path, cfg.Fields); err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(cfg.Layouts))
		for _, layout := range cfg.Layouts {
			if strings.TrimSpace(layout.Name) == "" {
				return fmt.Errorf("schema: field %q defines a layout without a name", path)
			}
			if _, dup := seen[layout.Name]; dup {
				return fmt.Errorf("schema: field %q defines layout %q twice", path, layout.Name)
			}
			seen[layout.Name] = struct{}{}
			if err := checkFields(path+"["+layout.Name+"]", layout.Fields); err != nil {
				return err
			}
		}
		seen = make(map[string]struct{}, len(cfg.Tabs))
		for _, tab := range cfg.Tabs {
			if strings.TrimSpace(tab.Name) == "" {
				return fmt.Errorf("schema: field %q defines a tab without a name", path)
			}
			if _, dup := seen[tab.Name]; dup {
				return fmt.Errorf("schema: field %q defines tab %q twice", path, tab.Name)
			}
			seen[tab.Name] = struct{}{}
			if err := checkFields(path+"["+tab.Name+"]", tab.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
