// Package validation wraps go-playground/validator and turns its failures into
// client-safe validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "userauth/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags.
func Struct(s interface{}) error {
	return Describe(validate.Struct(s))
}

// Var validates a single value against a tag expression.
func Var(field interface{}, tag string) error {
	return Describe(validate.Var(field, tag))
}

// Describe converts validator errors into an *errors.ValidationError carrying
// a message about the first failing field. Other errors pass through.
func Describe(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := fe.Field()
	if field == "" {
		field = "value"
	}

	switch fe.Tag() {
	case "required":
		return apperrors.NewValidationError(field + " is required")
	case "email":
		return apperrors.ErrInvalidEmail
	case "uuid", "uuid4":
		return apperrors.ErrInvalidUserID
	case "min":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return apperrors.NewValidationError(field + " is invalid")
	}
}
