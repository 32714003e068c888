package fields

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/validation"
)

var (
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

	patternCache sync.Map
)

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	// Patterns behave like the HTML pattern attribute and must match the
	// whole value.
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

func requiredError(label string) validation.Error {
	return validation.New(label, validation.CodeRequired, label+" is required")
}

// stringValue reads a scalar as text. Collections are rejected.
func stringValue(value any) (string, bool) {
	if value == nil {
		return "", true
	}
	if _, ok := coerce.Slice(value); ok {
		return "", false
	}
	if _, ok := coerce.Map(value); ok {
		return "", false
	}
	return coerce.String(value), true
}

// textRules applies required, length and pattern checks to text. The format
// check runs only for non-empty input.
func textRules(label string, cfg schema.FieldConfig, text string, format func(string) *validation.Error) []validation.Error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		if cfg.Required {
			return []validation.Error{requiredError(label)}
		}
		return nil
	}

	var errs []validation.Error
	length := utf8.RuneCountInString(trimmed)
	if cfg.MinLength != nil && length < *cfg.MinLength {
		errs = append(errs, validation.New(label, validation.CodeMinLength,
			fmt.Sprintf("%s must be at least %d characters", label, *cfg.MinLength)))
	}
	if cfg.MaxLength != nil && length > *cfg.MaxLength {
		errs = append(errs, validation.New(label, validation.CodeMaxLength,
			fmt.Sprintf("%s must be at most %d characters", label, *cfg.MaxLength)))
	}
	if cfg.Pattern != "" {
		if re, err := compilePattern(cfg.Pattern); err == nil && !re.MatchString(trimmed) {
			errs = append(errs, validation.New(label, validation.CodePattern,
				label+" has an invalid format"))
		}
	}
	if format != nil {
		if err := format(trimmed); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func rangeRules(label string, cfg schema.FieldConfig, number float64) []validation.Error {
	var errs []validation.Error
	if cfg.Min != nil && number < *cfg.Min {
		errs = append(errs, validation.New(label, validation.CodeMin,
			fmt.Sprintf("%s must be at least %s", label, coerce.String(*cfg.Min))))
	}
	if cfg.Max != nil && number > *cfg.Max {
		errs = append(errs, validation.New(label, validation.CodeMax,
			fmt.Sprintf("%s must be at most %s", label, coerce.String(*cfg.Max))))
	}
	return errs
}

func invalidType(label string) []validation.Error {
	return []validation.Error{validation.New(label, validation.CodeInvalidType, label+" has an invalid value")}
}

func emailFormat(label string) func(string) *validation.Error {
	return func(value string) *validation.Error {
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value || !strings.Contains(addr.Address, ".") {
			e := validation.New(label, validation.CodeInvalidEmail, label+" must be a valid email address")
			return &e
		}
		return nil
	}
}

func urlFormat(label string) func(string) *validation.Error {
	return func(value string) *validation.Error {
		parsed, err := url.ParseRequestURI(value)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			e := validation.New(label, validation.CodeInvalidURL, label+" must be a valid URL")
			return &e
		}
		return nil
	}
}

func layoutFormat(label string, message string, layouts ...string) func(string) *validation.Error {
	return func(value string) *validation.Error {
		for _, layout := range layouts {
			if _, err := time.Parse(layout, value); err == nil {
				return nil
			}
		}
		e := validation.New(label, validation.CodeInvalidDate, label+message)
		return &e
	}
}

func colorFormat(label string) func(string) *validation.Error {
	return func(value string) *validation.Error {
		if !colorPattern.MatchString(value) {
			e := validation.New(label, validation.CodeInvalidColor, label+" must be a valid hex color")
			return &e
		}
		return nil
	}
}

func checkPattern(cfg schema.FieldConfig) error {
	if cfg.Pattern == "" {
		return nil
	}
	if _, err := compilePattern(cfg.Pattern); err != nil {
		return fmt.Errorf("fields: invalid pattern %q: %w", cfg.Pattern, err)
	}
	return nil
}
