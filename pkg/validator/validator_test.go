package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10"`
}

type turn struct {
	Role string `json:"role" validate:"required,oneof=user assistant"`
}

type conversation struct {
	Messages []turn `json:"messages" validate:"required,min=1,dive"`
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&contactForm{Email: "not-an-email", Message: "short"})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "name is required", errs["name"])
	assert.Equal(t, "email must be a valid email address", errs["email"])
	assert.Equal(t, "message must be at least 10 characters", errs["message"])
}

func TestFormatValidationErrorsNestedSlice(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&conversation{Messages: []turn{{Role: "user"}, {Role: "system"}}})
	require.Error(t, err)
	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "messages[1].role must be one of: user assistant", errs["messages[1].role"])

	err = v.Validate(&conversation{Messages: []turn{}})
	require.Error(t, err)
	assert.Equal(t, "messages must contain at least 1 items", v.FormatValidationErrors(err)["messages"])
}

type measurement struct {
	Height *decimal.Decimal `json:"height" validate:"omitempty,gt=0,lte=300"`
}

func TestDecimalRangeTags(t *testing.T) {
	v := NewValidator()
	dec := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	assert.NoError(t, v.Validate(&measurement{}))
	assert.NoError(t, v.Validate(&measurement{Height: dec("162.5")}))
	assert.NoError(t, v.Validate(&measurement{Height: dec("300")}))

	err := v.Validate(&measurement{Height: dec("-1")})
	require.Error(t, err)
	assert.Equal(t, "height must be greater than 0", v.FormatValidationErrors(err)["height"])

	err = v.Validate(&measurement{Height: dec("300.01")})
	require.Error(t, err)
	assert.Equal(t, "height must be less than or equal to 300", v.FormatValidationErrors(err)["height"])
}
