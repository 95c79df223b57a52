package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"lonetown/app/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the custom rules registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// user ids are joined into match ids, so they must not carry the separator
		_ = validate.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
			return !strings.Contains(fl.Field().String(), models.MatchIDSeparator)
		})
	})
	return validate
}

// ValidateStruct runs struct validation and wraps failures in models.ErrValidation.
// Missing fields are reported before malformed ones.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: Missing required fields", models.ErrValidation)
		}
	}
	return fmt.Errorf("%w: invalid value for %s", models.ErrValidation, fieldErrs[0].Field())
}
