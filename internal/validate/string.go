// Package validate provides input validation for request fields: emails,
// display names, article text and article links.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength  int  // in runes, 0 = no minimum
	MaxLength  int  // in runes, 0 = no maximum
	AllowEmpty bool
	SingleLine bool // reject control characters including newlines
}

// String trims s and checks it against the constraints.
func String(s string, c StringConstraints) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if !c.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidCharacters)
	}

	length := utf8.RuneCountInString(s)
	if c.MinLength > 0 && length < c.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, c.MinLength)
	}
	if c.MaxLength > 0 && length > c.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, c.MaxLength)
	}

	for _, r := range s {
		if r == 0 || (c.SingleLine && unicode.IsControl(r)) {
			return "", fmt.Errorf("%w: control character %U", ErrInvalidCharacters, r)
		}
	}
	return s, nil
}

// DisplayName validates a user's display name: 1-100 characters, one line.
func DisplayName(name string) (string, error) {
	return String(name, StringConstraints{MinLength: 1, MaxLength: 100, SingleLine: true})
}

// ArticleTitle validates an article title: 1-300 characters, one line.
func ArticleTitle(title string) (string, error) {
	return String(title, StringConstraints{MinLength: 1, MaxLength: 300, SingleLine: true})
}

// Label validates a short optional label such as a category or source name.
func Label(label string) (string, error) {
	return String(label, StringConstraints{MaxLength: 100, AllowEmpty: true, SingleLine: true})
}

// Text validates optional free text such as a description or article body.
func Text(text string, maxLength int) (string, error) {
	return String(text, StringConstraints{MaxLength: maxLength, AllowEmpty: true})
}
