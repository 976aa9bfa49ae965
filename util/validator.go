package util

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var Validate *validator.Validate

// InitValidator must run before LoadConfig or any payload validation.
func InitValidator() {
	Validate = validator.New()
}

// ValidationMessages flattens a validation error into one message per field.
// Other errors yield their own message.
func ValidationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	return lo.Map(verrs, func(item validator.FieldError, index int) string {
		return item.Error()
	})
}
