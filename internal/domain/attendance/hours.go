package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

var millisecondsPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

// Policy holds the work-hour rules used to classify a closed log.
type Policy struct {
	RegularWorkHours decimal.Decimal
	OvertimeGrace    decimal.Decimal // hours
}

// DefaultPolicy is an 8 hour day with a 20 minute overtime grace window.
func DefaultPolicy() Policy {
	return Policy{
		RegularWorkHours: decimal.NewFromInt(8),
		OvertimeGrace:    decimal.NewFromInt(20).Div(decimal.NewFromInt(60)),
	}
}

// NewPolicy builds a policy from whole hours and grace minutes.
func NewPolicy(regularHours int, graceMinutes int) Policy {
	return Policy{
		RegularWorkHours: decimal.NewFromInt(int64(regularHours)),
		OvertimeGrace:    decimal.NewFromInt(int64(graceMinutes)).Div(decimal.NewFromInt(60)),
	}
}

// OvertimeThreshold is the worked-hours value overtime must strictly exceed.
func (p Policy) OvertimeThreshold() decimal.Decimal {
	return p.RegularWorkHours.Add(p.OvertimeGrace)
}

// WorkedHours is (out - in) in hours rounded to two decimals.
func WorkedHours(timeIn, timeOut time.Time) decimal.Decimal {
	ms := decimal.NewFromInt(timeOut.Sub(timeIn).Milliseconds())
	return ms.Div(millisecondsPerHour).Round(2)
}

// Deviation is the outcome of comparing worked hours with the regular day.
// At most one of Overtime and Undertime is non-zero.
type Deviation struct {
	Overtime  decimal.Decimal
	Undertime decimal.Decimal
}

func (d Deviation) IsOvertime() bool {
	return d.Overtime.IsPositive()
}

func (d Deviation) IsUndertime() bool {
	return d.Undertime.IsPositive()
}

// Assess classifies worked hours. Overtime only counts past the grace window,
// undertime counts for any shortfall. Between the regular day and the
// threshold nothing is recorded.
func (p Policy) Assess(worked decimal.Decimal) Deviation {
	switch {
	case worked.GreaterThan(p.OvertimeThreshold()):
		return Deviation{Overtime: worked.Sub(p.RegularWorkHours)}
	case worked.LessThan(p.RegularWorkHours):
		return Deviation{Undertime: p.RegularWorkHours.Sub(worked)}
	default:
		return Deviation{}
	}
}

// OvertimeValidUntil is one year after the log's calendar date.
func OvertimeValidUntil(logDate time.Time) time.Time {
	return logDate.AddDate(1, 0, 0)
}
