// Package validate wraps go-playground/validator with the tracker's custom
// tags and turns failures into domain validation errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sumire/tracker/internal/domain"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)

// Validator validates structs using `validate` tags. It also satisfies echo.Validator.
type Validator struct {
	validator *validator.Validate
}

// New creates a Validator with the custom tags registered:
//
//	enum        value implements Valid() bool and reports true
//	project_key 2-8 uppercase letters or digits
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(interface{ Valid() bool })
		return ok && e.Valid()
	})
	_ = v.RegisterValidation("project_key", func(fl validator.FieldLevel) bool {
		return projectKeyPattern.MatchString(fl.Field().String())
	})

	return &Validator{validator: v}
}

// Validate validates a struct and reports every failing field as
// domain.ValidationErrors.
func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		out := make(domain.ValidationErrors, 0, len(validationErrors))
		for _, fe := range validationErrors {
			out = append(out, &domain.ValidationError{
				Field:   fe.Field(),
				Message: message(fe),
			})
		}
		return out
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "enum":
		return fmt.Sprintf("%q is not an allowed value", fmt.Sprint(fe.Value()))
	case "project_key":
		return "must be 2-8 uppercase letters or digits"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
