package schema

import (
	"regexp"
	"strings"
)

var labelSeparators = regexp.MustCompile(`[_\-.\s]+`)

// DefaultLabeler turns a field name into a display label: "cta_text" and
// "ctaText" both become "Cta Text".
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}
	var words []string
	for _, part := range labelSeparators.Split(name, -1) {
		if part == "" {
			continue
		}
		for _, word := range splitCamel(part) {
			words = append(words, capitalize(word))
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) []string {
	var (
		words   []string
		current strings.Builder
	)
	for i, r := range input {
		if i > 0 && wordBoundary(input, i, r) {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func wordBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
