package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldErrors maps field names to the human-readable message surfaced
// inline next to the field. It satisfies error so services can return it
// directly.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates tagged request structs and converts violations into
// per-field messages.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(FieldErrors, len(verrs))
	for _, ve := range verrs {
		fields[strings.ToLower(ve.Field())] = message(ve)
	}
	return fields
}

func message(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
