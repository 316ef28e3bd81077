package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"coastalstay/internal/app/middleware"
)

// ErrInvalid is matched by every *Error.
var ErrInvalid = errors.New("validation: invalid input")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every failed field of one message.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Validator checks commands and queries against their `validate` struct tags.
// Field names come from json tags so messages match the request body.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports json field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return toSnake(fld.Name)
		}
		return name
	})
	return &Validator{v: v}
}

// Validate checks message and returns an *Error listing every failed field.
func (v *Validator) Validate(ctx context.Context, message any) error {
	if message == nil {
		return nil
	}
	rv := reflect.ValueOf(message)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := v.v.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Message: describe(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(err validator.FieldError) string {
	field := fieldPath(err)
	switch err.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return field + " must be at least " + err.Param()
	case "max":
		if err.Kind() == reflect.String {
			return field + " must be at most " + err.Param() + " characters"
		}
		return field + " must be at most " + err.Param()
	case "gte":
		return field + " must be " + err.Param() + " or more"
	case "lte":
		return field + " must be " + err.Param() + " or less"
	case "oneof":
		return field + " must be one of: " + err.Param()
	default:
		return field + " is invalid"
	}
}

// toSnake turns Go field names into snake_case: CheckIn is check_in and
// BookingID is booking_id.
func toSnake(name string) string {
	isUpper := func(c byte) bool { return c >= 'A' && c <= 'Z' }
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUpper(c) {
			if i > 0 && (!isUpper(name[i-1]) || (i+1 < len(name) && !isUpper(name[i+1]))) {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

var _ middleware.Validator = (*Validator)(nil)
