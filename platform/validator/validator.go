// Package validator wraps go-playground/validator behind an injectable
// instance so handlers share one rule registry.
package validator

import "github.com/go-playground/validator/v10"

// Validator checks request payloads against their struct tags.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the library defaults. Custom tags are added
// through RegisterValidation.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates every tagged field of s.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var checks a single value against a tag expression.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation installs a custom tag.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
