package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"Articulate/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report fields by their JSON names
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if o, ok := field.Interface().(Optional[string]); ok && o.Valid {
				return o.Value
			}
			return nil
		}, Optional[string]{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if o, ok := field.Interface().(Optional[float64]); ok && o.Valid {
				return o.Value
			}
			return nil
		}, Optional[float64]{})
		validate = v
	})
	return validate
}

// Validate checks s against its validate tags and returns an *apperr.ValidationError
// with one entry per failing field.
func Validate(message string, s interface{}) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &apperr.ValidationError{Message: message, Details: map[string]string{"_": err.Error()}}
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return &apperr.ValidationError{Message: message, Details: details}
}

// fieldPath drops the top-level struct name: "BulkCardsRequest.cards[0].ipa" -> "cards[0].ipa".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	// embedded structs show up under their Go type name
	return strings.ReplaceAll(ns, "CardInput.", "")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s long", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid":
		return "must be a UUID"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
