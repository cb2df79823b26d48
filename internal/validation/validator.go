package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}

func GetValidator() *validator.Validate {
	return validate
}

type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// FormatValidationErrors flattens validator errors. Field holds the dotted path
// below the root struct, e.g. "main.temp" or "weather[0].icon".
func FormatValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validatorErrs, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldPath(err),
				Value:   err.Value(),
				Tag:     err.Tag(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func getErrorMessage(err validator.FieldError) string {
	field := fieldPath(err)
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, err.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a host:port pair", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func ValidateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err != nil {
		return FormatValidationErrors(err)
	}
	return nil
}

// Join renders validation errors as a single "; " separated message.
func Join(errs []ValidationError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
