package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// gin's engine validates `binding` tags on ShouldBindJSON; report json
	// names so messages match the request body.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// validateStruct re-runs the binding tags after a service has normalised
// its request.
func validateStruct(s any) error {
	return ValidationError(binding.Validator.ValidateStruct(s))
}

// ValidationError turns the first validator failure in err into an
// ErrValidation with a readable message. Other errors are returned as is.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return Errorf(ErrValidation, "%s", describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return "Please provide a valid email address."
	case "len", "number":
		if field == "number" {
			return "Phone number must be exactly 10 digits."
		}
		return fmt.Sprintf("%s must be %s characters long.", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at least %s item(s).", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative.", field)
	}
	return fmt.Sprintf("%s is invalid.", field)
}
