package customvalidator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	postcodeRegex = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`)
	serialRegex   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ./_-]{0,63}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
)

// RegisterCustomValidations registers the project rules on v.
func RegisterCustomValidations(v *validator.Validate) error {
	registerNullTypes(v)

	rules := map[string]validator.Func{
		"uk_postcode":   isUKPostcode,
		"serial_number": isSerialNumber,
		"phone":         isPhoneNumber,
		"email":         isGoodEmailFormat,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func New() *validator.Validate {
	v := validator.New()
	if err := RegisterCustomValidations(v); err != nil {
		panic(err)
	}
	return v
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func isUKPostcode(fl validator.FieldLevel) bool {
	return postcodeRegex.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func isSerialNumber(fl validator.FieldLevel) bool {
	return serialRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func isPhoneNumber(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

// registerNullTypes lets tags see through null.String and null.Time. An
// invalid value validates as nil so that omitempty applies.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Time); ok && val.Valid {
			return val.Time
		}
		return nil
	}, null.Time{})
}
