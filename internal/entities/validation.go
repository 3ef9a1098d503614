package entities

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

const MinPublicationYear = 1450

// ValidationError describes a single malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	isbnSeparators = regexp.MustCompile(`[-\s]`)
	isbnDigits     = regexp.MustCompile(`^(\d{10}|\d{13})$`)
)

// NormalizeISBN strips hyphens and whitespace.
func NormalizeISBN(isbn string) string {
	return isbnSeparators.ReplaceAllString(isbn, "")
}

// ValidISBN reports whether isbn has exactly 10 or 13 digits once separators are removed.
// Checksums are not verified.
func ValidISBN(isbn string) bool {
	return isbnDigits.MatchString(NormalizeISBN(isbn))
}

// ValidPublicationYear reports whether year lies in 1450..current year.
func ValidPublicationYear(year int) bool {
	return year >= MinPublicationYear && year <= time.Now().Year()
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}
