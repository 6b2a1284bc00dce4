package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks request structs against their `validate` tags and
// reports failures as a *ValidationError.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

// New creates a Validator that names fields by their JSON tag
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	return &Validator{
		validate: v,
		messages: map[string]string{
			"required": "is required",
			"url":      "must be a valid URL",
			"min":      "is too short",
			"max":      "is too long",
		},
	}
}

// RegisterStringRule adds a custom tag backed by fn. message is reported
// for fields that fail it.
func (v *Validator) RegisterStringRule(tag, message string, fn func(string) bool) error {
	err := v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		return fmt.Errorf("failed to register %s rule: %w", tag, err)
	}
	v.messages[tag] = message
	return nil
}

// Struct validates s. It returns nil or a *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), v.message(fe))
	}
	return verr
}

func (v *Validator) message(fe validator.FieldError) string {
	if msg, ok := v.messages[fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("failed the %q rule", fe.Tag())
}
