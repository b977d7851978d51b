package validator

import (
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator for struct validation outside
// the gin binding path (configuration, internal payloads).
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

// Validate performs struct validation against `validate` tags.
func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
