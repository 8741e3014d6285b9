package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWorkedHours_RoundsToTwoDecimals(t *testing.T) {
	in := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	assert.True(t, decimal.RequireFromString("8").Equal(WorkedHours(in, in.Add(8*time.Hour))))
	assert.True(t, decimal.RequireFromString("8.35").Equal(WorkedHours(in, in.Add(8*time.Hour+21*time.Minute))))
	assert.True(t, decimal.RequireFromString("7.5").Equal(WorkedHours(in, in.Add(7*time.Hour+30*time.Minute))))
	assert.True(t, decimal.RequireFromString("0.02").Equal(WorkedHours(in, in.Add(time.Minute))))
}

func TestPolicy_Assess(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name      string
		worked    string
		overtime  string
		undertime string
	}{
		{name: "exactly regular day", worked: "8", overtime: "0", undertime: "0"},
		{name: "inside grace window", worked: "8.2", overtime: "0", undertime: "0"},
		{name: "at rounded threshold", worked: "8.33", overtime: "0", undertime: "0"},
		{name: "just past threshold", worked: "8.34", overtime: "0.34", undertime: "0"},
		{name: "overtime", worked: "8.35", overtime: "0.35", undertime: "0"},
		{name: "tiny shortfall", worked: "7.99", overtime: "0", undertime: "0.01"},
		{name: "undertime", worked: "7.5", overtime: "0", undertime: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Assess(decimal.RequireFromString(tt.worked))
			assert.True(t, decimal.RequireFromString(tt.overtime).Equal(d.Overtime), "overtime %s", d.Overtime)
			assert.True(t, decimal.RequireFromString(tt.undertime).Equal(d.Undertime), "undertime %s", d.Undertime)
		})
	}
}

func TestOvertimeValidUntil(t *testing.T) {
	logDate := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), OvertimeValidUntil(logDate))
}
