// Package validation configures go-playground/validator the same way for
// imported CSV records and for JSON request bodies.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json (or csv) tag
// name and knows the notblank rule.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register installs the field naming and custom rules on an existing
// validator, such as the one gin binds requests with.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return fmt.Errorf("register notblank rule: %w", err)
	}
	return nil
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"csv", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return !field.IsZero()
	}
	return strings.TrimSpace(field.String()) != ""
}

// FormatFieldError turns one validator failure into a human-readable reason.
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "email":
		return e.Field() + " must be a valid email address"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag())
	}
}

// FirstError converts the first failure of a validator error into a
// (field, reason) pair. ok is false when err is not a validation error.
func FirstError(err error) (field, reason string, ok bool) {
	errs, isValidation := err.(validator.ValidationErrors)
	if !isValidation || len(errs) == 0 {
		return "", "", false
	}
	return errs[0].Field(), FormatFieldError(errs[0]), true
}

// Messages converts every failure of a validator error into reasons keyed by field.
func Messages(err error) map[string]string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = FormatFieldError(fe)
		}
	}
	return out
}
