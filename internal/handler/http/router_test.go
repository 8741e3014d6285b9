package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/leave-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/leave-engine/internal/service/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testEmployee      = "0190a1b2-0000-7000-8000-0000000000e1"
	testAdmin         = "0190a1b2-0000-7000-8000-0000000000a1"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t        *testing.T
	handler  http.Handler
	jwt      jwt.Service
	clock    *clock.Fixed
	employee string
	admin    string
}

// Friday, 1 March 2024.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clk := clock.NewFixed(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	store := memory.NewStore(clk)
	leavePolicy := leave.DefaultPolicy()

	ledger := leaveService.NewLedgerService(store.Balances(), leavePolicy)
	journal := leaveService.NewJournalService(store.Transactions(), clk)
	calendar := leaveService.NewCalendarService(store.ApplicationDays(), store.Applications(), store, clk)
	applications := leaveService.NewApplicationService(store.LeaveTypes(), store.Applications(), store.ApplicationDays(),
		store.Balances(), store.Holidays(), calendar, ledger, journal, store, clk, leavePolicy)
	grants := leaveService.NewGrantService(store.LeaveTypes(), store.Balances(), store.GrantRequests(), ledger, store, clk)
	attendanceSvc := attendanceService.NewAttendanceService(store.AttendanceLogs(), store.AttendanceExceptions(),
		store.LeaveTypes(), ledger, journal, store, clk, attendance.DefaultPolicy(), leavePolicy)

	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)

	router := NewRouter(RouterOptions{Env: "test", LogLevel: slog.LevelError}, jwtSvc, Handlers{
		Attendance: NewAttendanceHandler(attendanceSvc),
		Leave: NewLeaveHandler(leaveService.NewLeaveTypeService(store.LeaveTypes()), ledger, applications, grants,
			journal, leaveService.NewHolidayService(store.Holidays())),
		Jobs: NewJobsHandler(cron.NewLeaveJobs(ledger, store, clk)),
	})

	s := &testServer{t: t, handler: router, jwt: jwtSvc, clock: clk}
	s.employee = s.token(testEmployee, jwt.RoleEmployee)
	s.admin = s.token(testAdmin, jwt.RoleAdmin)
	return s
}

func (s *testServer) token(employeeID string, role jwt.Role) string {
	token, _, err := s.jwt.GenerateAccessToken(employeeID, role)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// call performs the request, checks the status and decodes the data field into out.
func (s *testServer) call(method, path, token string, body any, wantStatus int, out any) envelope {
	s.t.Helper()
	rec := s.do(method, path, token, body)
	require.Equal(s.t, wantStatus, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	if out != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (s *testServer) createType(req leave.CreateLeaveTypeRequest) leave.LeaveTypeResponse {
	s.t.Helper()
	var lt leave.LeaveTypeResponse
	s.call(http.MethodPost, "/api/v1/leave/types", s.admin, req, http.StatusCreated, &lt)
	return lt
}

func (s *testServer) seedTypes() map[string]leave.LeaveTypeResponse {
	s.t.Helper()
	return map[string]leave.LeaveTypeResponse{
		"VL": s.createType(leave.CreateLeaveTypeRequest{Code: "VL", Name: "Vacation Leave", GrantBasis: leave.GrantBasisAnnual,
			TimeUnit: leave.TimeUnitDay, Credit: decimal.NewFromInt(10), IsFutureFilingAllowed: true, IsApprovalNeeded: true, IsCarriedOver: true}),
		"CL": s.createType(leave.CreateLeaveTypeRequest{Code: "CL", Name: "Compensatory Leave", GrantBasis: leave.GrantBasisOvertimeCredit,
			TimeUnit: leave.TimeUnitHour, IsFutureFilingAllowed: true, IsApprovalNeeded: true}),
		"ML": s.createType(leave.CreateLeaveTypeRequest{Code: "ML", Name: "Maternity Leave", GrantBasis: leave.GrantBasisSpecial,
			TimeUnit: leave.TimeUnitDay, Credit: decimal.NewFromInt(60), IsFutureFilingAllowed: true, IsApprovalNeeded: true}),
	}
}

func (s *testServer) balanceOf(code string) decimal.Decimal {
	s.t.Helper()
	var balances []leave.BalanceResponse
	s.call(http.MethodGet, "/api/v1/leave/balances", s.employee, nil, http.StatusOK, &balances)
	for _, b := range balances {
		if b.LeaveTypeCode != nil && *b.LeaveTypeCode == code {
			return b.RemainingCredit
		}
	}
	s.t.Fatalf("no %s balance", code)
	return decimal.Zero
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/leave/balances", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/leave/balances", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminRoutesRejectEmployees(t *testing.T) {
	s := newTestServer(t)

	env := s.call(http.MethodPost, "/api/v1/leave/types", s.employee, leave.CreateLeaveTypeRequest{Code: "VL"}, http.StatusForbidden, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	s.call(http.MethodPost, "/api/v1/admin/jobs/accrue-monthly", s.employee, nil, http.StatusForbidden, nil)
	s.call(http.MethodPost, "/api/v1/employees/"+testEmployee+"/leave-grants", s.employee, nil, http.StatusForbidden, nil)
}

func TestRouter_CreateTypeValidation(t *testing.T) {
	s := newTestServer(t)

	env := s.call(http.MethodPost, "/api/v1/leave/types", s.admin,
		leave.CreateLeaveTypeRequest{Code: "vacation leave", GrantBasis: "WEEKLY", TimeUnit: leave.TimeUnitDay},
		http.StatusUnprocessableEntity, nil)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "code")
	assert.Contains(t, env.Error.Details, "name")
	assert.Contains(t, env.Error.Details, "grant_basis")

	rec := s.do(http.MethodPost, "/api/v1/leave/types", s.admin, map[string]any{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_LeaveApplicationFlow(t *testing.T) {
	s := newTestServer(t)
	types := s.seedTypes()

	var granted []leave.BalanceResponse
	s.call(http.MethodPost, "/api/v1/employees/"+testEmployee+"/leave-grants", s.admin, nil, http.StatusCreated, &granted)
	assert.Len(t, granted, 2)

	s.call(http.MethodPost, "/api/v1/employees/"+testEmployee+"/leave-grants", s.admin, nil, http.StatusCreated, &granted)
	assert.Empty(t, granted)

	var app leave.ApplicationResponse
	s.call(http.MethodPost, "/api/v1/leave/applications", s.employee, map[string]any{
		"leave_type_id": types["VL"].ID,
		"start_date":    "2024-03-11",
		"end_date":      "2024-03-12",
		"reason":        "family trip",
	}, http.StatusCreated, &app)
	require.Len(t, app.Days, 2)
	assert.True(t, app.IsPending)

	env := s.call(http.MethodPost, "/api/v1/leave/applications", s.employee, map[string]any{
		"leave_type_id": types["VL"].ID,
		"start_date":    "2024-03-12",
		"end_date":      "2024-03-13",
	}, http.StatusConflict, nil)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	ids := []string{app.Days[0].ID, app.Days[1].ID}
	s.call(http.MethodPost, "/api/v1/leave/application-days/status", s.employee,
		map[string]any{"day_ids": ids, "status": "approved"}, http.StatusForbidden, nil)

	var result leave.StatusUpdateResult
	s.call(http.MethodPost, "/api/v1/leave/application-days/status", s.admin,
		map[string]any{"day_ids": ids, "status": "approved"}, http.StatusOK, &result)
	assert.Equal(t, leave.StatusUpdateResult{Matched: 2, Changed: 2}, result)

	assert.True(t, decimal.NewFromInt(8).Equal(s.balanceOf("VL")), s.balanceOf("VL").String())

	var got leave.ApplicationResponse
	s.call(http.MethodGet, "/api/v1/leave/applications/"+app.ID, s.employee, nil, http.StatusOK, &got)
	assert.False(t, got.IsPending)

	other := s.token("0190a1b2-0000-7000-8000-0000000000e2", jwt.RoleEmployee)
	s.call(http.MethodGet, "/api/v1/leave/applications/"+app.ID, other, nil, http.StatusNotFound, nil)

	var entries []leave.TransactionResponse
	s.call(http.MethodGet, "/api/v1/leave/transactions", s.employee, nil, http.StatusOK, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, leave.TransactionUse, entries[0].TransactionType)

	s.call(http.MethodGet, "/api/v1/leave/transactions", other, nil, http.StatusOK, &entries)
	assert.Empty(t, entries)

	s.call(http.MethodPost, "/api/v1/leave/application-days/cancel", s.employee,
		map[string]any{"day_ids": ids[:1]}, http.StatusConflict, nil)
}

func TestRouter_TimeOutBooksOvertime(t *testing.T) {
	s := newTestServer(t)
	s.seedTypes()
	s.call(http.MethodPost, "/api/v1/employees/"+testEmployee+"/leave-grants", s.admin, nil, http.StatusCreated, nil)

	s.call(http.MethodPost, "/api/v1/attendance/time-out", s.employee, nil, http.StatusNotFound, nil)

	shiftStart := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s.clock.Set(shiftStart)

	var log attendance.AttendanceLogResponse
	s.call(http.MethodPost, "/api/v1/attendance/time-in", s.employee, nil, http.StatusCreated, &log)
	assert.Equal(t, "2024-03-01", log.Date)
	assert.True(t, log.TimeIn.Equal(shiftStart))

	s.call(http.MethodPost, "/api/v1/attendance/time-in", s.employee, nil, http.StatusConflict, nil)

	s.clock.Advance(8*time.Hour + 21*time.Minute)
	var out attendance.TimeOutResponse
	env := s.call(http.MethodPost, "/api/v1/attendance/time-out", s.employee, nil, http.StatusOK, &out)
	assert.Equal(t, "Overtime recorded", env.Message)
	assert.True(t, decimal.NewFromFloat(8.35).Equal(out.WorkedHours), out.WorkedHours.String())
	assert.True(t, decimal.NewFromFloat(0.525).Equal(out.CreditDelta), out.CreditDelta.String())
	require.NotNil(t, out.Exception)
	require.NotNil(t, out.Exception.ValidUntil)
	assert.Equal(t, "2025-03-01", *out.Exception.ValidUntil)

	assert.True(t, decimal.NewFromFloat(0.525).Equal(s.balanceOf("CL")))

	var exceptions []attendance.AttendanceExceptionResponse
	s.call(http.MethodGet, "/api/v1/attendance/exceptions", s.employee, nil, http.StatusOK, &exceptions)
	assert.Len(t, exceptions, 1)
}

func TestRouter_AttendanceIgnoresClientTimestamps(t *testing.T) {
	s := newTestServer(t)
	s.seedTypes()
	s.call(http.MethodPost, "/api/v1/employees/"+testEmployee+"/leave-grants", s.admin, nil, http.StatusCreated, nil)

	shiftStart := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s.clock.Set(shiftStart)

	var log attendance.AttendanceLogResponse
	s.call(http.MethodPost, "/api/v1/attendance/time-in", s.employee,
		map[string]any{"timestamp": "2024-02-01T00:00:00Z"}, http.StatusCreated, &log)
	assert.True(t, log.TimeIn.Equal(shiftStart), log.TimeIn.String())
	assert.Equal(t, "2024-03-01", log.Date)

	s.clock.Advance(8 * time.Hour)
	var out attendance.TimeOutResponse
	s.call(http.MethodPost, "/api/v1/attendance/time-out", s.employee,
		map[string]any{"timestamp": "2024-03-05T08:00:00Z"}, http.StatusOK, &out)
	assert.True(t, decimal.NewFromInt(8).Equal(out.WorkedHours), out.WorkedHours.String())
	assert.Nil(t, out.Exception)
	assert.True(t, out.CreditDelta.IsZero())
	assert.True(t, s.balanceOf("CL").IsZero(), s.balanceOf("CL").String())
}

func TestRouter_GrantRequestReview(t *testing.T) {
	s := newTestServer(t)
	types := s.seedTypes()

	var req leave.GrantRequestResponse
	s.call(http.MethodPost, "/api/v1/leave/grant-requests", s.employee,
		map[string]any{"leave_type_id": types["ML"].ID}, http.StatusCreated, &req)
	assert.Equal(t, leave.DayStatusSubmitted, req.Status)

	var pending []leave.GrantRequestResponse
	s.call(http.MethodGet, "/api/v1/leave/grant-requests?status=submitted", s.admin, nil, http.StatusOK, &pending)
	assert.Len(t, pending, 1)

	s.call(http.MethodPost, "/api/v1/leave/grant-requests/"+req.ID+"/review", s.admin,
		map[string]any{"status": "approved"}, http.StatusOK, &req)
	assert.Equal(t, leave.DayStatusApproved, req.Status)

	assert.True(t, decimal.NewFromInt(60).Equal(s.balanceOf("ML")))

	s.call(http.MethodPost, "/api/v1/leave/grant-requests/"+req.ID+"/review", s.admin,
		map[string]any{"status": "rejected"}, http.StatusConflict, nil)
}

func TestRouter_AdminJobsAndExport(t *testing.T) {
	s := newTestServer(t)
	s.seedTypes()
	s.call(http.MethodPost, "/api/v1/employees/"+testEmployee+"/leave-grants", s.admin, nil, http.StatusCreated, nil)

	var result leave.JobResult
	s.call(http.MethodPost, "/api/v1/admin/jobs/accrue-monthly", s.admin, nil, http.StatusOK, &result)
	assert.Equal(t, cron.JobAccrueMonthly, result.Job)
	assert.Equal(t, int64(1), result.RowsAffected)
	assert.True(t, decimal.NewFromFloat(11.25).Equal(s.balanceOf("VL")), s.balanceOf("VL").String())

	rec := s.do(http.MethodGet, "/api/v1/leave/transactions/export", s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leave-transactions.xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Leave Records", "Overtime Records"}, book.GetSheetList())

	s.call(http.MethodGet, "/api/v1/leave/transactions?from=yesterday", s.employee, nil, http.StatusUnprocessableEntity, nil)
}

func TestRouter_Holidays(t *testing.T) {
	s := newTestServer(t)

	s.call(http.MethodPost, "/api/v1/leave/holidays", s.admin,
		map[string]any{"date": "2024-03-29", "name": "Good Friday"}, http.StatusCreated, nil)
	s.call(http.MethodPost, "/api/v1/leave/holidays", s.employee,
		map[string]any{"date": "2024-03-29", "name": "Good Friday"}, http.StatusForbidden, nil)

	var holidays []leave.HolidayResponse
	s.call(http.MethodGet, "/api/v1/leave/holidays?year=2024", s.employee, nil, http.StatusOK, &holidays)
	assert.Len(t, holidays, 1)

	s.call(http.MethodGet, "/api/v1/leave/holidays?year=next", s.employee, nil, http.StatusBadRequest, nil)
}
