// Package validation checks contracts and configuration before they are used.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/go-playground/validator/v10"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their yaml/json name rather than the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "yaml", "toml"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	if err := v.RegisterValidation("validkind", func(fl validator.FieldLevel) bool {
		k, ok := fl.Field().Interface().(entities.Kind)
		return ok && k.Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateContract checks a contract definition: a non-empty name, known
// kinds, and MinArity no larger than the number of declared params.
func ValidateContract(c entities.Contract) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid contract %q: %w", c.Name, err)
	}
	if c.MinArity > len(c.Params) {
		return fmt.Errorf("invalid contract %q: min_arity %d exceeds %d declared params", c.Name, c.MinArity, len(c.Params))
	}
	return nil
}

// ValidateConfig runs the struct-tag rules on a Config. The first failing
// field is reported as an *errors.ConfigError.
func ValidateConfig(cfg *entities.Config) error {
	return ValidateStruct(cfg)
}

// ValidateStruct runs the struct-tag rules on any struct.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &bridgeerrors.ConfigError{
			Field: fe.Namespace(),
			Err:   fmt.Errorf("failed on '%s' rule (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &bridgeerrors.ConfigError{Err: err}
}
