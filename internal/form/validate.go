package form

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Errors maps a failing field name to its message. Absent names are valid.
type Errors map[string]string

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("emaillite", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("form: register emaillite: %v", err))
	}
	return v
}

// Validate checks values against fields. Each field yields at most one
// message; the first failing rule wins in this order: required, email
// format, minimum, maximum. Neither argument is modified.
func Validate(fields []Field, values Values) Errors {
	errs := Errors{}
	for _, f := range fields {
		attrs := f.Attrs()
		if msg, failed := check(f.Kind(), attrs, values[attrs.Name]); failed {
			errs[attrs.Name] = msg
		}
	}
	return errs
}

func check(kind Kind, attrs Base, value any) (string, bool) {
	if attrs.Required && isEmpty(value) {
		return fmt.Sprintf("%s is required", attrs.Label), true
	}
	if kind == KindEmail && !isEmpty(value) {
		s, _ := value.(string)
		if err := validate.Var(s, "emaillite"); err != nil {
			return "invalid email", true
		}
	}
	n, ok := numeric(value)
	if !ok {
		return "", false
	}
	if attrs.Min != nil && n < *attrs.Min {
		return "minimum value is " + formatBound(*attrs.Min), true
	}
	if attrs.Max != nil && n > *attrs.Max {
		return "maximum value is " + formatBound(*attrs.Max), true
	}
	return "", false
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
