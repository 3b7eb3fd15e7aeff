package validator

import "github.com/go-playground/validator/v10"

// validate instancia única; las validaciones por struct tag son thread-safe.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct valida un DTO según sus tags `validate`.
func Struct(s any) error {
	return validate.Struct(s)
}
