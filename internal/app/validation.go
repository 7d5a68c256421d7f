package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// checkStruct runs the struct's validate tags and folds every failure into a
// single ValidationError.
func checkStruct(input any, extra ...string) error {
	reasons := append([]string(nil), extra...)
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			reasons = append(reasons, describe(fe))
		}
	}
	if len(reasons) == 0 {
		return nil
	}
	return &ValidationError{Reasons: reasons}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min", "max":
		if bounds, ok := lengthBounds[field]; ok {
			return fmt.Sprintf("%s must be between %d and %d characters", field, bounds[0], bounds[1])
		}
		return fmt.Sprintf("%s must be at %s %s characters", field, map[string]string{"min": "least", "max": "most"}[fe.Tag()], fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

var lengthBounds = map[string][2]int{
	"username": {3, 50},
	"password": {6, 100},
}
