package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const employeeID = "0190a1b2-0000-7000-8000-000000000001"

// Friday, 1 March 2024.
var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	clock    *clock.Fixed
	policy   leave.Policy
	ledger   *LedgerService
	journal  *JournalService
	calendar *CalendarService
	apps     *ApplicationService
	grants   *GrantService
	types    map[string]leave.LeaveType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFixed(testNow)
	store := memory.NewStore(clk)
	policy := leave.DefaultPolicy()

	ledger := NewLedgerService(store.Balances(), policy)
	journal := NewJournalService(store.Transactions(), clk)
	calendar := NewCalendarService(store.ApplicationDays(), store.Applications(), store, clk)
	apps := NewApplicationService(store.LeaveTypes(), store.Applications(), store.ApplicationDays(), store.Balances(),
		store.Holidays(), calendar, ledger, journal, store, clk, policy)
	grants := NewGrantService(store.LeaveTypes(), store.Balances(), store.GrantRequests(), ledger, store, clk)

	f := &fixture{
		store:    store,
		clock:    clk,
		policy:   policy,
		ledger:   ledger,
		journal:  journal,
		calendar: calendar,
		apps:     apps,
		grants:   grants,
		types:    make(map[string]leave.LeaveType),
	}

	f.addType(t, leave.LeaveType{Code: "VL", Name: "Vacation Leave", GrantBasis: leave.GrantBasisAnnual, TimeUnit: leave.TimeUnitDay, Credit: decimal.NewFromInt(10)})
	f.addType(t, leave.LeaveType{Code: "SL", Name: "Sick Leave", GrantBasis: leave.GrantBasisAnnual, TimeUnit: leave.TimeUnitDay, Credit: decimal.NewFromInt(10)})
	f.addType(t, leave.LeaveType{Code: "CL", Name: "Compensatory Leave", GrantBasis: leave.GrantBasisOvertimeCredit, TimeUnit: leave.TimeUnitHour, Credit: decimal.Zero})
	f.addType(t, leave.LeaveType{Code: "ML", Name: "Maternity Leave", GrantBasis: leave.GrantBasisSpecial, TimeUnit: leave.TimeUnitDay, Credit: decimal.NewFromInt(60)})
	return f
}

func (f *fixture) addType(t *testing.T, lt leave.LeaveType) leave.LeaveType {
	t.Helper()
	lt.IsActive = true
	lt.IsApprovalNeeded = true
	lt.IsFutureFilingAllowed = true
	created, err := f.store.LeaveTypes().Create(context.Background(), lt)
	require.NoError(t, err)
	f.types[lt.Code] = created
	return created
}

func (f *fixture) grant(t *testing.T, code string, credit int64) leave.EmployeeLeaveBalance {
	t.Helper()
	b, err := f.ledger.Grant(context.Background(), employeeID, f.types[code].ID, decimal.NewFromInt(credit), testNow.Year())
	require.NoError(t, err)
	return b
}

func (f *fixture) remaining(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	r, err := f.ledger.TotalBalance(context.Background(), employeeID, f.types[code].ID)
	require.NoError(t, err)
	return r
}

func (f *fixture) submit(t *testing.T, code, start, end string) leave.ApplicationResponse {
	t.Helper()
	resp, err := f.apps.Submit(context.Background(), leave.SubmitApplicationRequest{
		EmployeeID:  employeeID,
		LeaveTypeID: f.types[code].ID,
		StartDate:   start,
		EndDate:     end,
		Reason:      "family trip",
	})
	require.NoError(t, err)
	return resp
}

func dayIDs(resp leave.ApplicationResponse) []string {
	ids := make([]string, 0, len(resp.Days))
	for _, d := range resp.Days {
		ids = append(ids, d.ID)
	}
	return ids
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
