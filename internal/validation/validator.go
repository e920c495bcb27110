// Package validation checks request shapes with validator/v10 and reports
// failures as 422 errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"movie-service/internal/apperror"
)

// Validator wraps go-playground/validator and implements echo.Validator
type Validator struct {
	v *validator.Validate
}

// New creates a validator that names fields by their json, query or form tag
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				continue
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns an *apperror.Error on failure
func (v *Validator) Validate(i any) error {
	if err := v.v.Struct(i); err != nil {
		return formatError(err)
	}
	return nil
}

func formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperror.Validation("validation failed", map[string]string{"body": err.Error()})
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return apperror.Validation("validation failed", fieldErrors)
}

// FieldError builds a 422 error for a single field, for failures found before
// struct validation runs such as unparsable query parameters.
func FieldError(field, msg string) error {
	return apperror.Validation("validation failed", map[string]string{field: msg})
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
