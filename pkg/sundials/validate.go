package sundials

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sunml/sundials-go/internal/native"
)

// Dense is a column-major view of a dense Jacobian. Its storage belongs to
// the native solver and is only valid during the callback it is passed to.
type Dense = native.Dense

// configValidate is the validator instance for session and problem configs.
var configValidate *validator.Validate

func init() {
	v, err := newConfigValidator()
	if err != nil {
		panic("sundials: config validator: " + err.Error())
	}
	configValidate = v
}

// newConfigValidator reports field errors by yaml name and registers the
// "finite" rule.
func newConfigValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		return nil, fmt.Errorf("register finite: %w", err)
	}
	return v, nil
}

// validateFinite rejects NaN and infinite floats.
func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return true
}

// ValidateStruct checks v against its validate tags. Failures wrap
// ErrIllegalInput and name the offending yaml fields.
func ValidateStruct(v any) error {
	err := configValidate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrIllegalInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrIllegalInput, strings.Join(msgs, "; "))
}
