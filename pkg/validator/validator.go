package validator

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/pdf-api/pkg/errors"
)

// TagName is the struct tag holding constraints, shared with gin binding.
const TagName = "binding"

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]*$`)

// Decimals outside these bounds are never converted to float64. Converting a
// large exponent allocates 10^exp as a big integer.
const (
	maxDecimalExponent = 28
	maxDecimalBits     = 127
)

var (
	registerOnce sync.Once
	registerErr  error
)

// New returns a standalone validator configured like the gin engine.
func New() *govalidator.Validate {
	v := govalidator.New()
	v.SetTagName(TagName)
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterGin configures gin's default validator once.
func RegisterGin() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = Register(v)
	})
	return registerErr
}

// Register adds json field names, decimal support and the phone tag.
func Register(v *govalidator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return decimalValue(d)
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("decimal_bounds", func(fl govalidator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 {
			return false
		}
		return !math.IsNaN(f.Float())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("phone", func(fl govalidator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}

// decimalValue returns NaN for out of range decimals so that every numeric
// comparison on them fails.
func decimalValue(d decimal.Decimal) float64 {
	exp := d.Exponent()
	if exp > maxDecimalExponent || exp < -maxDecimalExponent || d.Coefficient().BitLen() > maxDecimalBits {
		return math.NaN()
	}
	f, _ := d.Float64()
	return f
}

var messages = map[string]string{
	"required":  "field required",
	"email":     "value is not a valid email address",
	"url":       "value is not a valid URL",
	"phone":     "value is not a valid phone number",
	"oneof":     "value must be one of: %s",
	"min":       "must have at least %s characters or items",
	"max":       "must have at most %s characters or items",
	"len":       "must have exactly %s characters",
	"gt":        "must be greater than %s",
	"gte":       "must be greater than or equal to %s",
	"lt":        "must be less than %s",
	"lte":       "must be less than or equal to %s",
	"datetime":  "must be a date in the format %s",
	"alpha":     "must contain letters only",
	"uppercase": "must be upper case",

	"decimal_bounds": "number is out of the supported range",
}

// FieldErrors converts a binding error into per-field errors. Errors that
// are not validation errors are reported against "body".
func FieldErrors(err error) []errors.FieldError {
	if err == nil {
		return nil
	}

	var verrs govalidator.ValidationErrors
	if stderrors.As(err, &verrs) {
		out := make([]errors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, errors.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: message(fe),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		return []errors.FieldError{{Field: typeErr.Field, Message: fmt.Sprintf("invalid type, expected %s", typeErr.Type)}}
	}

	return []errors.FieldError{{Field: "body", Message: err.Error()}}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe govalidator.FieldError) string {
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed on the %q constraint", fe.Tag())
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}
