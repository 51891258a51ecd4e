package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"medikart/internal/model"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct converts the first failed rule into a Validation domain error.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.NewValidationError("Invalid request")
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return model.NewValidationError(fmt.Sprintf("%s is required", field))
	case "email":
		return model.NewValidationError(fmt.Sprintf("%s must be a valid email address", field))
	case "url":
		return model.NewValidationError(fmt.Sprintf("%s must be a valid URL", field))
	case "min", "gte":
		return model.NewValidationError(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "max":
		return model.NewValidationError(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	default:
		return model.NewValidationError(fmt.Sprintf("%s is invalid", field))
	}
}
