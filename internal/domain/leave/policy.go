package leave

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy holds the ledger constants and the leave type codes the engine treats specially.
type Policy struct {
	OvertimeMultiplier    decimal.Decimal
	MonthlyAccrualRate    decimal.Decimal
	HoursPerDay           decimal.Decimal
	AccrualCodes          []string
	CarryOverCodes        []string
	SickLeaveCode         string
	CompensatoryLeaveCode string
}

func DefaultPolicy() Policy {
	return Policy{
		OvertimeMultiplier:    decimal.NewFromFloat(1.5),
		MonthlyAccrualRate:    decimal.NewFromFloat(1.25),
		HoursPerDay:           decimal.NewFromInt(8),
		AccrualCodes:          []string{"VL", "SL"},
		CarryOverCodes:        []string{"VL", "SL"},
		SickLeaveCode:         "SL",
		CompensatoryLeaveCode: "CL",
	}
}

// UnitQuantity is how much one whole day of leave consumes in the given unit.
func (p Policy) UnitQuantity(unit TimeUnit) decimal.Decimal {
	if unit == TimeUnitHour {
		return p.HoursPerDay
	}
	return decimal.NewFromInt(1)
}

func (p Policy) IsSickLeave(code string) bool {
	return strings.EqualFold(code, p.SickLeaveCode)
}

func (p Policy) IsCarriedOver(code string) bool {
	return slices.ContainsFunc(p.CarryOverCodes, func(c string) bool { return strings.EqualFold(c, code) })
}
