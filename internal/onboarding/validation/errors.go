package validation

import (
	"errors"
	"fmt"
	"strings"

	"kycportal/internal/onboarding/models"
)

// Code classifies a field failure. Codes are stable wire values.
type Code string

const (
	CodeRequired     Code = "required"
	CodeMinLength    Code = "min_length"
	CodeMustAccept   Code = "must_accept"
	CodeFileRequired Code = "file_required"
	CodeNotNumeric   Code = "not_numeric"
	CodeInvalidEmail Code = "invalid_email"
)

// FieldError is one failed rule on a stage. Slot is set for attachment
// failures, Section and Field for draft fields.
type FieldError struct {
	Section models.Section `json:"section,omitempty"`
	Field   string         `json:"field,omitempty"`
	Slot    models.Slot    `json:"slot,omitempty"`
	Code    Code           `json:"code"`
	Message string         `json:"message"`
}

// Key is the form key the error belongs to.
func (e FieldError) Key() string {
	if e.Slot != "" {
		return "attachments." + string(e.Slot)
	}
	return string(e.Section) + "." + e.Field
}

// FieldErrors collects the failures of one stage in rule order.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Key(), e.Code))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Has reports whether key failed with code.
func (fe FieldErrors) Has(key string, code Code) bool {
	for _, e := range fe {
		if e.Key() == key && e.Code == code {
			return true
		}
	}
	return false
}

// ByKey indexes the errors by form key, keeping the first code per key.
func (fe FieldErrors) ByKey() map[string]FieldError {
	out := make(map[string]FieldError, len(fe))
	for _, e := range fe {
		if _, ok := out[e.Key()]; !ok {
			out[e.Key()] = e
		}
	}
	return out
}

// AsFieldErrors extracts FieldErrors from an error chain.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
