package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsValidDate(t *testing.T) {
	d, ok := IsValidDate("2024-02-29")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, s := range []string{"2023-02-29", "2023-13-01", "01-01-2023", "2024-03-01T08:00:00Z", ""} {
		_, ok := IsValidDate(s)
		assert.False(t, ok, s)
	}
}

func TestIsValidLeaveTypeCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"VL", true},
		{"CL", true},
		{"MAT_LEAVE", true},
		{"SL2", true},
		{"", false},
		{"vl", false},
		{"VERY_LONG_CODE", false},
		{"V L", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidLeaveTypeCode(tt.code))
		})
	}
}

func TestIsEmptyAndNonNegative(t *testing.T) {
	assert.True(t, IsEmpty(" \t"))
	assert.False(t, IsEmpty(" sick "))

	assert.True(t, IsNonNegative(decimal.Zero))
	assert.True(t, IsNonNegative(decimal.NewFromFloat(1.25)))
	assert.False(t, IsNonNegative(decimal.NewFromFloat(-0.5)))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"},
		{Field: "leave_type_id", Message: "leave_type_id is required"},
	}

	assert.Equal(t, map[string]string{
		"start_date":    "start_date must be in YYYY-MM-DD format",
		"leave_type_id": "leave_type_id is required",
	}, errs.ToMap())
	assert.Equal(t, "start_date: start_date must be in YYYY-MM-DD format; leave_type_id: leave_type_id is required", errs.Error())
}
