package leave

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    DayStatus
		wantErr bool
	}{
		{"approved", DayStatusApproved, false},
		{"APPROVED", DayStatusApproved, false},
		{" Rejected ", DayStatusRejected, false},
		{"cancelled", DayStatusCancelled, false},
		{"submitted", DayStatusSubmitted, false},
		{"pending", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDayStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDayStatus_IsTerminal(t *testing.T) {
	assert.False(t, DayStatusSubmitted.IsTerminal())
	assert.True(t, DayStatusApproved.IsTerminal())
	assert.True(t, DayStatusRejected.IsTerminal())
	assert.True(t, DayStatusCancelled.IsTerminal())
}

func TestLeaveTypePatch_Assignments(t *testing.T) {
	name := "Vacation"
	credit := decimal.NewFromInt(12)
	active := false

	patch := LeaveTypePatch{IsActive: &active, Name: &name, Credit: &credit}
	got := patch.Assignments()

	require.Len(t, got, 3)
	assert.Equal(t, ColumnName, got[0].Column)
	assert.Equal(t, ColumnCredit, got[1].Column)
	assert.Equal(t, ColumnIsActive, got[2].Column)
	assert.False(t, patch.IsEmpty())
	assert.True(t, LeaveTypePatch{}.IsEmpty())
}

func TestLeaveTypePatch_Apply(t *testing.T) {
	notice := 5
	lt := LeaveType{Code: "VL", Name: "Vacation", NoticeDays: 0, IsActive: true}

	out := LeaveTypePatch{NoticeDays: &notice}.Apply(lt)

	assert.Equal(t, 5, out.NoticeDays)
	assert.Equal(t, "Vacation", out.Name)
	assert.Equal(t, "VL", out.Code)
	assert.True(t, out.IsActive)
}

func TestPolicy_UnitQuantity(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.UnitQuantity(TimeUnitHour).Equal(decimal.NewFromInt(8)))
	assert.True(t, p.UnitQuantity(TimeUnitDay).Equal(decimal.NewFromInt(1)))
	assert.True(t, p.IsSickLeave("sl"))
	assert.False(t, p.IsSickLeave("VL"))
}

func TestSubmitApplicationRequest_Fraction(t *testing.T) {
	r := SubmitApplicationRequest{}
	f, err := r.Fraction()
	require.NoError(t, err)
	assert.True(t, f.Equal(DayFractionWhole))

	half := decimal.NewFromFloat(0.5)
	r.DayFraction = &half
	f, err = r.Fraction()
	require.NoError(t, err)
	assert.True(t, f.Equal(DayFractionHalf))

	bad := decimal.NewFromFloat(0.25)
	r.DayFraction = &bad
	_, err = r.Fraction()
	assert.ErrorIs(t, err, ErrInvalidDayFraction)
}

func TestSubmitApplicationRequest_Validate(t *testing.T) {
	r := SubmitApplicationRequest{EmployeeID: "e1", LeaveTypeID: "t1", StartDate: "2024-03-04", EndDate: "2024-03-08"}
	start, end, err := r.Validate()
	require.NoError(t, err)
	assert.Equal(t, 4, start.Day())
	assert.Equal(t, 8, end.Day())

	r.StartDate = "04/03/2024"
	_, _, err = r.Validate()
	assert.Error(t, err)
}
