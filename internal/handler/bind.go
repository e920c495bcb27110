package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"movie-service/internal/validation"
)

// bindAndValidate binds the request body into v and runs shape validation.
// Both failures surface as 422.
func bindAndValidate(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return validation.FieldError("body", "could not be parsed")
	}
	return c.Validate(v)
}

func bindingError(err error) error {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		return validation.FieldError(bindErr.Field, "has an invalid value")
	}
	return validation.FieldError("query", "has an invalid value")
}
