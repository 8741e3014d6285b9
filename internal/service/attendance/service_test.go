package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/repository/memory"
	leavesvc "github.com/cmlabs-hris/leave-engine/internal/service/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const employeeID = "0190a1b2-0000-7000-8000-000000000001"

var shiftStart = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	clock   *clock.Fixed
	ledger  *leavesvc.LedgerService
	journal *leavesvc.JournalService
	svc     attendance.AttendanceService
	clType  leave.LeaveType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	clk := clock.NewFixed(shiftStart)
	store := memory.NewStore(clk)
	policy := leave.DefaultPolicy()
	ledger := leavesvc.NewLedgerService(store.Balances(), policy)
	journal := leavesvc.NewJournalService(store.Transactions(), clk)

	cl, err := store.LeaveTypes().Create(ctx, leave.LeaveType{
		Code:       "CL",
		Name:       "Compensatory Leave",
		GrantBasis: leave.GrantBasisOvertimeCredit,
		TimeUnit:   leave.TimeUnitHour,
		IsActive:   true,
	})
	require.NoError(t, err)
	_, err = ledger.Grant(ctx, employeeID, cl.ID, decimal.Zero, 2024)
	require.NoError(t, err)

	svc := NewAttendanceService(store.AttendanceLogs(), store.AttendanceExceptions(), store.LeaveTypes(),
		ledger, journal, store, clk, attendance.DefaultPolicy(), policy)

	return &fixture{store: store, clock: clk, ledger: ledger, journal: journal, svc: svc, clType: cl}
}

func (f *fixture) work(t *testing.T, d time.Duration) attendance.TimeOutResponse {
	t.Helper()
	ctx := context.Background()

	f.clock.Set(shiftStart)
	_, err := f.svc.RecordTimeIn(ctx, attendance.TimeInRequest{EmployeeID: employeeID})
	require.NoError(t, err)

	f.clock.Advance(d)
	resp, err := f.svc.RecordTimeOut(ctx, attendance.TimeOutRequest{EmployeeID: employeeID})
	require.NoError(t, err)
	return resp
}

func (f *fixture) compBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.TotalBalance(context.Background(), employeeID, f.clType.ID)
	require.NoError(t, err)
	return b
}

func TestRecordTimeOut_ExactRegularDay(t *testing.T) {
	f := newFixture(t)

	resp := f.work(t, 8*time.Hour)

	assert.True(t, resp.WorkedHours.Equal(decimal.NewFromInt(8)))
	assert.Nil(t, resp.Exception)
	assert.True(t, resp.CreditDelta.IsZero())
	assert.True(t, f.compBalance(t).IsZero())

	entries, err := f.journal.List(context.Background(), leave.JournalFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordTimeOut_WithinGraceWindow(t *testing.T) {
	f := newFixture(t)

	resp := f.work(t, 8*time.Hour+15*time.Minute)

	assert.Nil(t, resp.Exception)
	assert.True(t, f.compBalance(t).IsZero())
}

func TestRecordTimeOut_Overtime(t *testing.T) {
	f := newFixture(t)

	// 8h21m = 8.35h
	resp := f.work(t, 8*time.Hour+21*time.Minute)

	assert.True(t, resp.WorkedHours.Equal(decimal.RequireFromString("8.35")), resp.WorkedHours.String())
	require.NotNil(t, resp.Exception)
	assert.True(t, resp.Exception.IsOvertime)
	assert.True(t, resp.Exception.Hours.Equal(decimal.RequireFromString("0.35")))
	require.NotNil(t, resp.Exception.ValidUntil)
	assert.Equal(t, "2025-03-04", *resp.Exception.ValidUntil)
	assert.True(t, resp.CreditDelta.Equal(decimal.RequireFromString("0.525")))
	assert.True(t, f.compBalance(t).Equal(decimal.RequireFromString("0.525")))

	entries, err := f.journal.List(context.Background(), leave.JournalFilter{EmployeeID: employeeID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, leave.TransactionEarn, entries[0].TransactionType)
	assert.Equal(t, leave.TimeUnitHour, entries[0].TimeUnit)
	assert.True(t, entries[0].Quantity.Equal(decimal.RequireFromString("0.35")), entries[0].Quantity.String())
	require.NotNil(t, entries[0].AttendanceExceptionID)
	assert.Equal(t, resp.Exception.ID, *entries[0].AttendanceExceptionID)
	assert.Nil(t, entries[0].LeaveApplicationID)
}

func TestRecordTimeOut_Undertime(t *testing.T) {
	f := newFixture(t)

	resp := f.work(t, 7*time.Hour+30*time.Minute)

	assert.True(t, resp.WorkedHours.Equal(decimal.RequireFromString("7.5")))
	require.NotNil(t, resp.Exception)
	assert.False(t, resp.Exception.IsOvertime)
	assert.Nil(t, resp.Exception.ValidUntil)
	assert.True(t, resp.Exception.Hours.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, resp.CreditDelta.Equal(decimal.RequireFromString("-0.5")))
	assert.True(t, f.compBalance(t).Equal(decimal.RequireFromString("-0.5")))

	entries, err := f.journal.List(context.Background(), leave.JournalFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, leave.TransactionDeduct, entries[0].TransactionType)
	assert.True(t, entries[0].Quantity.Equal(decimal.RequireFromString("0.5")))
}

func TestRecordTimeOut_WithoutTimeIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordTimeOut(ctx, attendance.TimeOutRequest{EmployeeID: employeeID})
	assert.ErrorIs(t, err, attendance.ErrNoOpenLog)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	logs, err := f.svc.ListMyLogs(ctx, attendance.MyLogsFilter{EmployeeID: employeeID})
	require.NoError(t, err)
	assert.Empty(t, logs)
	exceptions, err := f.svc.ListExceptions(ctx, employeeID)
	require.NoError(t, err)
	assert.Empty(t, exceptions)
}

func TestRecordTimeIn_AlreadyOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	log, err := f.svc.RecordTimeIn(ctx, attendance.TimeInRequest{EmployeeID: employeeID})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", log.Date)
	assert.Nil(t, log.TimeOut)
	assert.True(t, log.TimeIn.Equal(shiftStart))

	_, err = f.svc.RecordTimeIn(ctx, attendance.TimeInRequest{EmployeeID: employeeID})
	assert.ErrorIs(t, err, attendance.ErrAlreadyTimedIn)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRecordTimeOut_BeforeTimeIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordTimeIn(ctx, attendance.TimeInRequest{EmployeeID: employeeID})
	require.NoError(t, err)

	f.clock.Advance(-time.Minute)
	_, err = f.svc.RecordTimeOut(ctx, attendance.TimeOutRequest{EmployeeID: employeeID})
	assert.ErrorIs(t, err, attendance.ErrTimeOutBeforeTimeIn)

	open, err := f.store.AttendanceLogs().GetOpenByEmployee(ctx, employeeID)
	require.NoError(t, err)
	assert.Nil(t, open.TimeOut)
}

func TestRecordTimeOut_FailureKeepsLogOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// no compensatory balance for this employee, so the ledger step fails
	other := "0190a1b2-0000-7000-8000-000000000002"
	_, err := f.svc.RecordTimeIn(ctx, attendance.TimeInRequest{EmployeeID: other})
	require.NoError(t, err)

	f.clock.Advance(10 * time.Hour)
	_, err = f.svc.RecordTimeOut(ctx, attendance.TimeOutRequest{EmployeeID: other})
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrBalanceNotFound))

	open, err := f.store.AttendanceLogs().GetOpenByEmployee(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, open.TimeOut)

	exceptions, err := f.svc.ListExceptions(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, exceptions)
}

func TestListMyLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.work(t, 8*time.Hour)

	logs, err := f.svc.ListMyLogs(ctx, attendance.MyLogsFilter{EmployeeID: employeeID, From: "2024-03-01", To: "2024-03-31"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].TimeOut)

	logs, err = f.svc.ListMyLogs(ctx, attendance.MyLogsFilter{EmployeeID: employeeID, From: "2024-04-01"})
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = f.svc.ListMyLogs(ctx, attendance.MyLogsFilter{EmployeeID: employeeID, From: "March"})
	assert.Error(t, err)
}

func TestListExceptions(t *testing.T) {
	f := newFixture(t)
	f.work(t, 9*time.Hour)

	exceptions, err := f.svc.ListExceptions(context.Background(), employeeID)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	assert.True(t, exceptions[0].Hours.Equal(decimal.NewFromInt(1)))
	require.NotNil(t, exceptions[0].LogDate)
	assert.Equal(t, "2024-03-04", *exceptions[0].LogDate)
}
