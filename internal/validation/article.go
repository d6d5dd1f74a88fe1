// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"unicode/utf8"

	"inkwell/internal/models"
)

const (
	TitleMinLen    = 3
	TitleMaxLen    = 100
	CategoryMinLen = 3
	CategoryMaxLen = 50
	ContentMinLen  = 10
)

// ArticleInput is the typed shape of an article submission. Form fields are
// extracted into it once at the boundary; anything missing fails here rather
// than deep in a handler.
type ArticleInput struct {
	Title    string
	Category string
	Content  string
}

// Validate checks the submission against the article schema and returns the
// per-field failures. An empty map means the input is acceptable.
func (in ArticleInput) Validate() models.FieldErrors {
	errs := models.FieldErrors{}

	checkLength(errs, "title", in.Title, TitleMinLen, TitleMaxLen)
	checkLength(errs, "category", in.Category, CategoryMinLen, CategoryMaxLen)
	checkLength(errs, "content", in.Content, ContentMinLen, 0)

	return errs
}

// checkLength enforces min/max rune counts for a field; max of 0 means unbounded.
func checkLength(errs models.FieldErrors, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min {
		errs.Add(field, fmt.Sprintf("String must contain at least %d character(s)", min))
		return
	}
	if max > 0 && n > max {
		errs.Add(field, fmt.Sprintf("String must contain at most %d character(s)", max))
	}
}
