package utils

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValidationErrors(t *testing.T) {
	t.Parallel()

	type input struct {
		Title string `validate:"required"`
		Size  int    `validate:"max=20"`
	}
	err := validator.New().Struct(input{Size: 21})
	require.Error(t, err)

	msgs := FormatValidationErrors(fmt.Errorf("invalid: %w", err))
	assert.Equal(t, []string{
		"Field 'Title' failed on the 'required' tag",
		"Field 'Size' failed on the 'max' tag (value: 20)",
	}, msgs)

	assert.Nil(t, FormatValidationErrors(fmt.Errorf("plain")))
	assert.Nil(t, FormatValidationErrors(nil))
}

func TestSanitizeInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "accept", SanitizeInput("  Accept \n"))
	assert.Equal(t, "", SanitizeInput("   "))
}
