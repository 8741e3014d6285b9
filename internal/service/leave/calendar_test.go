package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDays_WeekendAndHoliday(t *testing.T) {
	// Fri 8 Mar .. Tue 12 Mar, Monday is a holiday
	days := ExpandDays("app-1", date(2024, 3, 8), date(2024, 3, 12), []time.Time{date(2024, 3, 11)}, leave.DayFractionWhole)

	require.Len(t, days, 5)
	want := []struct {
		day       int
		workday   bool
		isHoliday bool
	}{
		{8, true, false},
		{9, false, false},
		{10, false, false},
		{11, false, true},
		{12, true, false},
	}
	for i, w := range want {
		assert.Equal(t, w.day, days[i].Date.Day())
		assert.Equal(t, w.workday, days[i].IsWorkday, "day %d", w.day)
		assert.Equal(t, w.isHoliday, days[i].IsHoliday, "day %d", w.day)
		assert.Equal(t, leave.DayStatusSubmitted, days[i].Status)
		assert.Equal(t, "app-1", days[i].LeaveApplicationID)
		assert.True(t, days[i].DayFraction.Equal(leave.DayFractionWhole))
	}
}

func TestExpandDays_SingleDayAndDefaultFraction(t *testing.T) {
	days := ExpandDays("app-1", date(2024, 3, 4), date(2024, 3, 4), nil, dec("0"))

	require.Len(t, days, 1)
	assert.True(t, days[0].IsWorkday)
	assert.True(t, days[0].DayFraction.Equal(leave.DayFractionWhole))
}

func TestCalendarService_UpdateDayStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, "VL", 10)
	app := f.submit(t, "VL", "2024-03-04", "2024-03-05")
	ids := dayIDs(app)
	approver := "approver-1"

	result, changed, err := f.calendar.UpdateDayStatus(ctx, ids[:1], leave.DayStatusRejected, &approver)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusUpdateResult{Matched: 1, Changed: 1}, result)
	require.Len(t, changed, 1)
	assert.Nil(t, changed[0].Day.ApprovedAt)

	t.Run("same status is a no-op", func(t *testing.T) {
		result, changed, err := f.calendar.UpdateDayStatus(ctx, ids[:1], leave.DayStatusRejected, &approver)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusUpdateResult{Matched: 1, Changed: 0}, result)
		assert.Empty(t, changed)
	})

	t.Run("other terminal status conflicts", func(t *testing.T) {
		_, _, err := f.calendar.UpdateDayStatus(ctx, ids, leave.DayStatusApproved, &approver)
		assert.ErrorIs(t, err, leave.ErrDayAlreadyProcessed)

		days, err := f.apps.ListDays(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.DayStatusSubmitted, days[1].Status)
	})

	t.Run("unknown day", func(t *testing.T) {
		_, _, err := f.calendar.UpdateDayStatus(ctx, []string{"missing"}, leave.DayStatusRejected, &approver)
		assert.ErrorIs(t, err, leave.ErrDayNotFound)
	})

	t.Run("application settles when every day is terminal", func(t *testing.T) {
		got, err := f.apps.GetApplication(ctx, app.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPending)

		_, _, err = f.calendar.UpdateDayStatus(ctx, ids[1:], leave.DayStatusRejected, &approver)
		require.NoError(t, err)

		got, err = f.apps.GetApplication(ctx, app.ID)
		require.NoError(t, err)
		assert.False(t, got.IsPending)
	})
}
