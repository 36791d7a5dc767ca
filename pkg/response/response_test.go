package response

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorResponse(t *testing.T) {
	type req struct {
		Name string `json:"name" validate:"required"`
		URL  string `json:"url" validate:"required,url"`
	}

	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	t.Run("not a validation error", func(t *testing.T) {
		got := ValidationErrorResponse(errors.New("boom"))

		assert.Equal(t, BadRequestResponse, got)
	})

	t.Run("required field", func(t *testing.T) {
		err := validate.Struct(req{URL: "https://example.com"})
		got := ValidationErrorResponse(err)

		assert.Equal(t, "Validation failed", got.Error)
		assert.Equal(t, []ValidationError{
			{
				Field: "name",
				Value: "",
				Issue: "This field is required.",
			},
		}, got.Details)
	})

	t.Run("multiple fields", func(t *testing.T) {
		err := validate.Struct(req{URL: "not url"})
		got := ValidationErrorResponse(err)

		assert.Equal(t, []ValidationError{
			{
				Field: "name",
				Value: "",
				Issue: "This field is required.",
			},
			{
				Field: "url",
				Value: "not url",
				Issue: "Invalid url.",
			},
		}, got.Details)
	})
}
