package errors

import (
	"math"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Limits applied to layout documents.
const (
	// MaxBoxes is the largest number of boxes a single document may hold.
	MaxBoxes = 10000

	// MaxDimension bounds box sizes, spacing and widths.
	MaxDimension = 1e7

	maxIDLength    = 128
	maxNameLength  = 200
	maxLabelLength = 512
)

var boxIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateBoxID checks a box identifier: letters, digits and ._:-
// separators, starting with a letter or digit. Empty ids are allowed;
// callers assign positional ones.
func ValidateBoxID(id string) error {
	switch {
	case id == "":
		return nil
	case len(id) > maxIDLength:
		return New(ErrCodeInvalidDocument, "longer than %d characters", maxIDLength).At("id")
	case !boxIDRegex.MatchString(id):
		return New(ErrCodeInvalidDocument, "malformed id %q", id).At("id")
	}
	return nil
}

// ValidateLabel checks a box label for length and control characters.
func ValidateLabel(label string) error {
	return printable("label", label, maxLabelLength)
}

// ValidateName checks a document name the same way as a label, with a
// shorter limit.
func ValidateName(name string) error {
	return printable("name", name, maxNameLength)
}

func printable(field, s string, limit int) error {
	if n := utf8.RuneCountInString(s); n > limit {
		return New(ErrCodeInvalidDocument, "%d characters, max %d", n, limit).At(field)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "contains control character %U", r).At(field)
		}
	}
	return nil
}

// ValidateDimension checks a width, height or spacing value named field:
// finite, non-negative and at most MaxDimension.
func ValidateDimension(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return New(ErrCodeInvalidInput, "must be finite").At(field)
	case v < 0:
		return New(ErrCodeInvalidInput, "must not be negative (got %g)", v).At(field)
	case v > MaxDimension:
		return New(ErrCodeInvalidInput, "exceeds %g", float64(MaxDimension)).At(field)
	}
	return nil
}

// ValidateBoxCount checks the number of boxes in a document.
func ValidateBoxCount(n int) error {
	if n > MaxBoxes {
		return New(ErrCodeInvalidDocument, "%d boxes, max %d", n, MaxBoxes).At("boxes")
	}
	return nil
}

// ValidateDocumentID checks a stored document id, a canonical UUID.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "document id is empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid document id %q", id)
	}
	return nil
}
