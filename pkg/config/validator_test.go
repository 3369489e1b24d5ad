package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tunables struct {
	DailyBonus int64  `validate:"gt=0"`
	Timezone   string `validate:"required"`
	Mode       string `validate:"oneof=weighted tier"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&tunables{DailyBonus: 500, Timezone: "UTC", Mode: "tier"}))
	assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)

	err := v.Validate(&tunables{Mode: "x"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "DailyBonus' must be greater than 0")
	assert.Contains(t, err.Error(), "Timezone' is required")
	assert.Contains(t, err.Error(), "must be one of [weighted tier]")
}
