package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inquiryForm struct {
	Name   string `json:"name" validate:"required,max=5"`
	Email  string `json:"email" validate:"required,email"`
	Guests int    `json:"guests" validate:"gte=0,lte=10"`
}

type bookingForm struct {
	Ref       string        `validate:"required"`
	BookingID string        `validate:"required"`
	Items     []inquiryForm `validate:"dive"`
}

func TestValidator_FieldMessages(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), inquiryForm{Name: "Anastasia", Email: "nope", Guests: 11})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{
		{Field: "name", Message: "name must be at most 5 characters"},
		{Field: "email", Message: "email must be a valid email"},
		{Field: "guests", Message: "guests must be 10 or less"},
	}, verr.Fields)
}

func TestValidator_NestedAndUntagged(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), &bookingForm{Items: []inquiryForm{{Name: "Ana", Email: "ana@example.com"}, {Email: "x@example.com"}}})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"ref", "booking_id", "items[1].name"}, fields)

	assert.NoError(t, v.Validate(context.Background(), inquiryForm{Name: "Ana", Email: "ana@example.com"}))
	assert.NoError(t, v.Validate(context.Background(), nil))
	assert.NoError(t, v.Validate(context.Background(), (*bookingForm)(nil)))
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"Ref":             "ref",
		"CheckIn":         "check_in",
		"BookingID":       "booking_id",
		"IDKey":           "id_key",
		"ExpectedVersion": "expected_version",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnake(in), in)
	}
}
