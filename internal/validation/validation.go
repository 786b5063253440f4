// Package validation normalizes and checks the names and year ranges that
// arrive from the API and the CLI.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxNameLength matches the width of the fav_keywords.name column.
const MaxNameLength = 512

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid input")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the "name" tag registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			return validName(fl.Field().String())
		})
	})
	return validate
}

// NormalizeName trims surrounding whitespace. Names are otherwise compared
// exactly, so case is preserved.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateName checks a normalized keyword, professor or institute name.
func ValidateName(field, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %s must be at most %d bytes", ErrInvalid, field, MaxNameLength)
	}
	if !validName(name) {
		return fmt.Errorf("%w: %s contains control characters", ErrInvalid, field)
	}
	return nil
}

func validName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidateYearRange checks an inclusive publication year range.
func ValidateYearRange(start, end int) error {
	if start < 0 || end < 0 {
		return fmt.Errorf("%w: years must not be negative", ErrInvalid)
	}
	if start > end {
		return fmt.Errorf("%w: start year %d is after end year %d", ErrInvalid, start, end)
	}
	return nil
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "name":
		return field + " must be a non-empty name without control characters"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "dive":
		return field + " is invalid"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
