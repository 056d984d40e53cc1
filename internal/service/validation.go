package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxQueryLength bounds the question text in runes.
const DefaultMaxQueryLength = 500

func validateQuery(text string, maxLen int) (string, error) {
	q := strings.TrimSpace(text)
	var ferrs []FieldError
	switch n := utf8.RuneCountInString(q); {
	case n == 0:
		ferrs = append(ferrs, FieldError{Field: "query", Message: "must not be empty"})
	case n > maxLen:
		ferrs = append(ferrs, FieldError{Field: "query", Message: fmt.Sprintf("must be at most %d characters", maxLen)})
	}
	if !utf8.ValidString(q) {
		ferrs = append(ferrs, FieldError{Field: "query", Message: "must be valid UTF-8"})
	}
	return q, newInvalidInput(ferrs)
}
