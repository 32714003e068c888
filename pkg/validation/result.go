// Package validation carries the data errors produced when a value map is
// checked against a field schema.
package validation

import (
	"strconv"
)

// Code classifies a validation failure.
type Code string

const (
	CodeRequired      Code = "REQUIRED"
	CodeMinLength     Code = "MIN_LENGTH"
	CodeMaxLength     Code = "MAX_LENGTH"
	CodePattern       Code = "PATTERN"
	CodeMin           Code = "MIN"
	CodeMax           Code = "MAX"
	CodeInvalidNumber Code = "INVALID_NUMBER"
	CodeInvalidEmail  Code = "INVALID_EMAIL"
	CodeInvalidURL    Code = "INVALID_URL"
	CodeInvalidDate   Code = "INVALID_DATE"
	CodeInvalidColor  Code = "INVALID_COLOR"
	CodeInvalidOption Code = "INVALID_OPTION"
	CodeInvalidType   Code = "INVALID_TYPE"
	CodeMinRows       Code = "MIN_ROWS"
	CodeMaxRows       Code = "MAX_ROWS"
	CodeUnknownLayout Code = "UNKNOWN_LAYOUT"
)

// PathSeparator joins a composite label and a nested field label.
const PathSeparator = " › "

// Error is a single data error. Field holds the display label, not the key.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    Code   `json:"code,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

// New builds an Error.
func New(field string, code Code, message string) Error {
	return Error{Field: field, Message: message, Code: code}
}

// Result aggregates every error of a validation pass. Valid is true exactly
// when Errors is empty; FieldErrors is only populated when errors exist.
type Result struct {
	Valid       bool               `json:"valid"`
	Errors      []Error            `json:"errors"`
	FieldErrors map[string][]Error `json:"fieldErrors,omitempty"`
}

// Valid returns an empty, successful result.
func Valid() Result {
	return Result{Valid: true, Errors: []Error{}}
}

// For returns the errors recorded for a field key.
func (r Result) For(name string) []Error {
	return r.FieldErrors[name]
}

// Builder accumulates errors in field order.
type Builder struct {
	errors []Error
	byName map[string][]Error
}

// Add records errors for the field key name. Empty batches are ignored.
func (b *Builder) Add(name string, errs ...Error) {
	if len(errs) == 0 {
		return
	}
	if b.byName == nil {
		b.byName = make(map[string][]Error)
	}
	b.errors = append(b.errors, errs...)
	b.byName[name] = append(b.byName[name], errs...)
}

// Len reports how many errors were added.
func (b *Builder) Len() int {
	return len(b.errors)
}

// Result finalises the builder.
func (b *Builder) Result() Result {
	if len(b.errors) == 0 {
		return Valid()
	}
	out := Result{
		Valid:       false,
		Errors:      append([]Error(nil), b.errors...),
		FieldErrors: make(map[string][]Error, len(b.byName)),
	}
	for name, errs := range b.byName {
		out.FieldErrors[name] = append([]Error(nil), errs...)
	}
	return out
}

// Nest prefixes nested errors with the composite label, e.g. "Items › Name".
func Nest(prefix string, errs []Error) []Error {
	if len(errs) == 0 {
		return nil
	}
	out := make([]Error, len(errs))
	for i, err := range errs {
		err.Field = prefix + PathSeparator + err.Field
		out[i] = err
	}
	return out
}

// RowLabel formats the label of a 0-based row, e.g. "Items #2" for index 1.
func RowLabel(label string, index int) string {
	return label + " #" + strconv.Itoa(index+1)
}
