// Package validation checks a draft against the rules of one wizard stage.
// Failures are returned as data, one entry per failed field, and never as
// panics or transport errors.
package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"kycportal/internal/onboarding/models"
	pstrings "kycportal/pkg/platform/strings"
)

// Validate runs every field and file rule of stage against d. It returns nil
// when the stage passes.
func Validate(stage models.Stage, d models.Draft) FieldErrors {
	var errs FieldErrors
	for _, rule := range stage.Fields {
		if fe, ok := checkField(rule, d); !ok {
			errs = append(errs, fe)
		}
	}
	for _, rule := range stage.Files {
		if fe, ok := checkFile(rule, d); !ok {
			errs = append(errs, fe)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkField(rule models.FieldRule, d models.Draft) (FieldError, bool) {
	fail := func(code Code, msg string) (FieldError, bool) {
		return FieldError{Section: rule.Section, Field: rule.Name, Code: code, Message: msg}, false
	}
	label := rule.Label
	if label == "" {
		label = rule.Name
	}

	raw, _ := d.Value(rule.Section, rule.Name)
	switch v := raw.(type) {
	case bool:
		if rule.MustAccept && !v {
			return fail(CodeMustAccept, label+" must be accepted")
		}
	case []string:
		if rule.Required && len(pstrings.DedupeAndTrim(v)) == 0 {
			return fail(CodeRequired, label+" is required")
		}
	case string:
		return checkString(rule, label, strings.TrimSpace(v), fail)
	default:
		// Inactive section or unknown field: only a required or must-accept
		// rule can fail.
		if rule.MustAccept {
			return fail(CodeMustAccept, label+" must be accepted")
		}
		if rule.Required {
			return fail(CodeRequired, label+" is required")
		}
	}
	return FieldError{}, true
}

func checkString(rule models.FieldRule, label, v string, fail func(Code, string) (FieldError, bool)) (FieldError, bool) {
	if v == "" {
		if rule.Required {
			return fail(CodeRequired, label+" is required")
		}
		return FieldError{}, true
	}
	if rule.MinLength > 0 && utf8.RuneCountInString(v) < rule.MinLength {
		return fail(CodeMinLength, fmt.Sprintf("%s must be at least %d characters", label, rule.MinLength))
	}
	if rule.Numeric && !isNumeric(v) {
		return fail(CodeNotNumeric, label+" must be a number")
	}
	if rule.Email && !isEmail(v) {
		return fail(CodeInvalidEmail, label+" must be a valid email address")
	}
	return FieldError{}, true
}

func checkFile(rule models.FileRule, d models.Draft) (FieldError, bool) {
	if !rule.Required {
		return FieldError{}, true
	}
	if att, ok := d.Attachments[rule.Slot]; ok && !att.IsEmpty() {
		return FieldError{}, true
	}
	label := rule.Label
	if label == "" {
		label = string(rule.Slot)
	}
	return FieldError{Slot: rule.Slot, Code: CodeFileRequired, Message: label + " is required"}, false
}

// isNumeric accepts plain decimal numbers with optional thousands separators.
// Exponents and NaN/Inf spellings are rejected.
func isNumeric(v string) bool {
	if strings.ContainsFunc(v, unicode.IsLetter) {
		return false
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	return err == nil
}

// isEmail accepts a bare address; display-name forms are rejected.
func isEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	return err == nil && addr.Address == v
}
