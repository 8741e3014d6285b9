package postgresql_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *TestDatabaseSetup

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_URL not set, skipping postgresql repository tests")
		os.Exit(0)
	}

	var err error
	testDB, err = NewTestDatabase(context.Background(), dsn)
	if err != nil {
		panic(err)
	}
	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func setupTestData(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, testDB.TruncateAllTables(ctx))
	return ctx
}

func createLeaveType(t *testing.T, ctx context.Context, code string, unit leave.TimeUnit) leave.LeaveType {
	t.Helper()
	lt, err := postgresql.NewLeaveTypeRepository(testDB.DB).Create(ctx, leave.LeaveType{
		Code:             code,
		Name:             code + " leave",
		GrantBasis:       leave.GrantBasisAnnual,
		TimeUnit:         unit,
		Credit:           decimal.NewFromInt(15),
		IsApprovalNeeded: true,
		IsCarriedOver:    true,
		IsActive:         true,
	})
	require.NoError(t, err)
	return lt
}

func TestLeaveTypeRepository_CodeUniqueAndPatch(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewLeaveTypeRepository(testDB.DB)

	vl := createLeaveType(t, ctx, "VL", leave.TimeUnitDay)

	_, err := repo.Create(ctx, leave.LeaveType{Code: "vl", Name: "dup", GrantBasis: leave.GrantBasisAnnual, TimeUnit: leave.TimeUnitDay})
	assert.ErrorIs(t, err, leave.ErrLeaveTypeCodeExists)

	name := "Vacation"
	inactive := false
	updated, err := repo.Update(ctx, vl.ID, leave.LeaveTypePatch{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Vacation", updated.Name)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.IsCarriedOver)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = repo.GetByID(ctx, "018f0000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
}

func TestLeaveBalanceRepository_LatestYearAndCarryOver(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewLeaveBalanceRepository(testDB.DB)
	vl := createLeaveType(t, ctx, "VL", leave.TimeUnitDay)

	for _, year := range []int{2023, 2024} {
		_, err := repo.Create(ctx, leave.EmployeeLeaveBalance{
			EmployeeID:      "emp-1",
			LeaveTypeID:     vl.ID,
			Year:            year,
			StartingCredit:  decimal.NewFromInt(15),
			RemainingCredit: decimal.NewFromInt(15),
		})
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, leave.EmployeeLeaveBalance{EmployeeID: "emp-1", LeaveTypeID: vl.ID, Year: 2024})
	assert.ErrorIs(t, err, leave.ErrBalanceAlreadyGranted)

	latest, err := repo.GetLatest(ctx, "emp-1", vl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2024, latest.Year)
	require.NotNil(t, latest.LeaveTypeCode)
	assert.Equal(t, "VL", *latest.LeaveTypeCode)

	_, err = repo.AddUsed(ctx, latest.ID, decimal.NewFromInt(3))
	require.NoError(t, err)

	n, err := repo.AccrueByTypeCodes(ctx, []string{"vl"}, decimal.NewFromFloat(1.25))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CarryOverByTypeCodes(ctx, []string{"VL"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	after, err := repo.GetLatest(ctx, "emp-1", vl.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(13.25).Equal(after.CarryIn), after.CarryIn.String())
	assert.True(t, decimal.NewFromFloat(28.25).Equal(after.RemainingCredit), after.RemainingCredit.String())
	assert.True(t, after.Used.IsZero())
	assert.True(t, after.Earned.IsZero())

	all, err := repo.ListByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, decimal.NewFromInt(15).Equal(all[1].RemainingCredit))
}

func TestLeaveBalanceRepository_ConcurrentIncrements(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewLeaveBalanceRepository(testDB.DB)
	cl := createLeaveType(t, ctx, "CL", leave.TimeUnitHour)

	bal, err := repo.Create(ctx, leave.EmployeeLeaveBalance{EmployeeID: "emp-1", LeaveTypeID: cl.ID, Year: 2024})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddEarned(ctx, bal.ID, decimal.NewFromFloat(0.5))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetLatest(ctx, "emp-1", cl.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(got.RemainingCredit), got.RemainingCredit.String())
}

func TestApplicationDayRepository_StatusOnlyMovesSubmitted(t *testing.T) {
	ctx := setupTestData(t)
	vl := createLeaveType(t, ctx, "VL", leave.TimeUnitDay)
	apps := postgresql.NewLeaveApplicationRepository(testDB.DB)
	days := postgresql.NewLeaveApplicationDayRepository(testDB.DB)

	start := clock.Date(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
	end := start.AddDate(0, 0, 1)
	app, err := apps.Create(ctx, leave.LeaveApplication{
		EmployeeID: "emp-1", LeaveTypeID: vl.ID, StartDate: start, EndDate: end, IsPending: true,
	})
	require.NoError(t, err)

	created, err := days.CreateBatch(ctx, []leave.LeaveApplicationDay{
		{LeaveApplicationID: app.ID, Status: leave.DayStatusSubmitted, DayFraction: leave.DayFractionWhole, IsWorkday: true, Date: start},
		{LeaveApplicationID: app.ID, Status: leave.DayStatusSubmitted, DayFraction: leave.DayFractionHalf, IsWorkday: true, Date: end},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	overlap, err := apps.HasOverlappingLeave(ctx, "emp-1", vl.ID, end, end.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.True(t, overlap)

	ids := []string{created[1].ID, created[0].ID}
	contexts, err := days.ListContexts(ctx, ids)
	require.NoError(t, err)
	require.Len(t, contexts, 2)
	assert.Equal(t, created[1].ID, contexts[0].Day.ID)
	assert.Equal(t, leave.TimeUnitDay, contexts[0].TimeUnit)
	assert.Equal(t, "emp-1", contexts[0].EmployeeID)

	approver := "mgr-1"
	now := time.Now()
	n, err := days.UpdateStatus(ctx, []string{created[0].ID}, leave.DayStatusApproved, &approver, &now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = days.UpdateStatus(ctx, ids, leave.DayStatusRejected, &approver, &now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pending, err := days.CountPending(ctx, app.ID)
	require.NoError(t, err)
	assert.Zero(t, pending)

	// approved days still hold their date, rejected ones free it
	overlap, err = apps.HasOverlappingLeave(ctx, "emp-1", vl.ID, start, start)
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = apps.HasOverlappingLeave(ctx, "emp-1", vl.ID, end, end.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	ctx := setupTestData(t)
	tx := postgresql.NewTransactor(testDB.DB)
	logs := postgresql.NewAttendanceLogRepository(testDB.DB)
	boom := errors.New("boom")

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := logs.Create(ctx, attendance.AttendanceLog{EmployeeID: "emp-1", Date: clock.Date(time.Now()), TimeIn: time.Now()})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = logs.GetOpenByEmployee(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrNoOpenLog)
}

func TestAttendanceLogRepository_OneOpenLog(t *testing.T) {
	ctx := setupTestData(t)
	logs := postgresql.NewAttendanceLogRepository(testDB.DB)

	now := time.Now()
	_, err := logs.Create(ctx, attendance.AttendanceLog{EmployeeID: "emp-1", Date: clock.Date(now), TimeIn: now})
	require.NoError(t, err)

	_, err = logs.Create(ctx, attendance.AttendanceLog{EmployeeID: "emp-1", Date: clock.Date(now), TimeIn: now})
	assert.ErrorIs(t, err, attendance.ErrAlreadyTimedIn)
}

func TestLeaveTransactionRepository_BatchAndFilter(t *testing.T) {
	ctx := setupTestData(t)
	vl := createLeaveType(t, ctx, "VL", leave.TimeUnitDay)
	apps := postgresql.NewLeaveApplicationRepository(testDB.DB)
	journal := postgresql.NewLeaveTransactionRepository(testDB.DB)

	day := clock.Date(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
	app, err := apps.Create(ctx, leave.LeaveApplication{EmployeeID: "emp-1", LeaveTypeID: vl.ID, StartDate: day, EndDate: day, IsPending: true})
	require.NoError(t, err)

	batch := "018f0000-0000-7000-8000-0000000000aa"
	require.NoError(t, journal.CreateBatch(ctx, []leave.LeaveTransaction{
		{BatchID: batch, EmployeeID: "emp-1", LeaveTypeID: vl.ID, LeaveApplicationID: &app.ID, TransactionType: leave.TransactionUse, TimeUnit: leave.TimeUnitDay, Quantity: decimal.NewFromInt(1), Date: day},
		{BatchID: batch, EmployeeID: "emp-1", LeaveTypeID: vl.ID, LeaveApplicationID: &app.ID, TransactionType: leave.TransactionUse, TimeUnit: leave.TimeUnitDay, Quantity: decimal.NewFromInt(1), Date: day.AddDate(0, 0, 1)},
	}))

	got, err := journal.List(ctx, leave.TransactionFilter{EmployeeID: "emp-1", To: day})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, batch, got[0].BatchID)

	err = journal.CreateBatch(ctx, []leave.LeaveTransaction{
		{BatchID: batch, EmployeeID: "emp-1", LeaveTypeID: vl.ID, TransactionType: leave.TransactionUse, TimeUnit: leave.TimeUnitDay, Quantity: decimal.NewFromInt(1), Date: day},
	})
	assert.Error(t, err)
}
