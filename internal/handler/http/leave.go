package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateType(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)
	DeactivateType(w http.ResponseWriter, r *http.Request)
	GetType(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)

	GetMyBalances(w http.ResponseWriter, r *http.Request)
	GetEmployeeBalances(w http.ResponseWriter, r *http.Request)
	GrantEmployeeLeave(w http.ResponseWriter, r *http.Request)

	SubmitApplication(w http.ResponseWriter, r *http.Request)
	GetApplication(w http.ResponseWriter, r *http.Request)
	ListMyApplications(w http.ResponseWriter, r *http.Request)
	ListApplicationDays(w http.ResponseWriter, r *http.Request)
	UpdateDayStatus(w http.ResponseWriter, r *http.Request)
	CancelDays(w http.ResponseWriter, r *http.Request)

	FileGrantRequest(w http.ResponseWriter, r *http.Request)
	ReviewGrantRequest(w http.ResponseWriter, r *http.Request)
	ListGrantRequests(w http.ResponseWriter, r *http.Request)

	ListTransactions(w http.ResponseWriter, r *http.Request)
	ExportTransactions(w http.ResponseWriter, r *http.Request)

	CreateHoliday(w http.ResponseWriter, r *http.Request)
	ListHolidays(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveTypeService   leave.LeaveTypeService
	ledgerService      leave.LedgerService
	applicationService leave.ApplicationService
	grantService       leave.GrantService
	journalService     leave.JournalService
	holidayService     leave.HolidayService
}

func NewLeaveHandler(
	leaveTypeService leave.LeaveTypeService,
	ledgerService leave.LedgerService,
	applicationService leave.ApplicationService,
	grantService leave.GrantService,
	journalService leave.JournalService,
	holidayService leave.HolidayService,
) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveTypeService:   leaveTypeService,
		ledgerService:      ledgerService,
		applicationService: applicationService,
		grantService:       grantService,
		journalService:     journalService,
		holidayService:     holidayService,
	}
}

// Leave types

// CreateType implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	leaveType, err := l.leaveTypeService.CreateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave type created successfully", leaveType)
}

// UpdateType implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateLeaveTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	leaveType, err := l.leaveTypeService.UpdateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type updated successfully", leaveType)
}

// DeactivateType implements LeaveHandler.
func (l *LeaveHandlerImpl) DeactivateType(w http.ResponseWriter, r *http.Request) {
	if err := l.leaveTypeService.DeactivateLeaveType(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type deactivated successfully", nil)
}

// GetType implements LeaveHandler.
func (l *LeaveHandlerImpl) GetType(w http.ResponseWriter, r *http.Request) {
	leaveType, err := l.leaveTypeService.GetLeaveType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leaveType)
}

// ListTypes implements LeaveHandler. Inactive types are included only with
// ?all=true.
func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	types, err := l.leaveTypeService.ListLeaveTypes(r.Context(), !all)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, types)
}

// Balances and grants

// GetMyBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := l.ledgerService.Balances(r.Context(), middleware.EmployeeID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, balances)
}

// GetEmployeeBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := l.ledgerService.Balances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, balances)
}

type grantLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id,omitempty"`
}

// GrantEmployeeLeave implements LeaveHandler. Without a leave_type_id every
// regular type is granted; with one, that special type is granted.
func (l *LeaveHandlerImpl) GrantEmployeeLeave(w http.ResponseWriter, r *http.Request) {
	var req grantLeaveRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	employeeID := chi.URLParam(r, "id")

	var (
		granted []leave.BalanceResponse
		err     error
	)
	if req.LeaveTypeID == "" {
		granted, err = l.grantService.GrantRegularLeaveTypes(r.Context(), employeeID)
	} else {
		granted, err = l.grantService.GrantSpecialLeaveType(r.Context(), employeeID, req.LeaveTypeID)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, fmt.Sprintf("Granted %d leave balance(s)", len(granted)), granted)
}

// Applications

// SubmitApplication implements LeaveHandler.
func (l *LeaveHandlerImpl) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req leave.SubmitApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = middleware.EmployeeID(r.Context())

	application, err := l.applicationService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave application submitted successfully", application)
}

// GetApplication implements LeaveHandler. Employees only see their own.
func (l *LeaveHandlerImpl) GetApplication(w http.ResponseWriter, r *http.Request) {
	application, err := l.applicationService.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if application.EmployeeID != middleware.EmployeeID(r.Context()) && !middleware.IsAdmin(r) {
		response.HandleError(w, leave.ErrApplicationNotFound)
		return
	}

	response.Success(w, application)
}

// ListMyApplications implements LeaveHandler.
func (l *LeaveHandlerImpl) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := l.applicationService.ListMyApplications(r.Context(), middleware.EmployeeID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, applications)
}

// ListApplicationDays implements LeaveHandler.
func (l *LeaveHandlerImpl) ListApplicationDays(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	application, err := l.applicationService.GetApplication(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if application.EmployeeID != middleware.EmployeeID(r.Context()) && !middleware.IsAdmin(r) {
		response.HandleError(w, leave.ErrApplicationNotFound)
		return
	}

	days, err := l.applicationService.ListDays(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, days)
}

// UpdateDayStatus implements LeaveHandler. Approvers move days to approved
// or rejected.
func (l *LeaveHandlerImpl) UpdateDayStatus(w http.ResponseWriter, r *http.Request) {
	var req leave.ApproveDaysRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ApproverID = middleware.EmployeeID(r.Context())

	result, err := l.applicationService.ApproveDays(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Leave days reviewed", "approver_id", req.ApproverID, "status", req.Status, "changed", result.Changed)
	response.SuccessWithMessage(w, "Leave application days updated", result)
}

// CancelDays implements LeaveHandler.
func (l *LeaveHandlerImpl) CancelDays(w http.ResponseWriter, r *http.Request) {
	var req leave.CancelDaysRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = middleware.EmployeeID(r.Context())

	result, err := l.applicationService.CancelDays(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application days cancelled", result)
}

// Grant requests

// FileGrantRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) FileGrantRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.FileGrantRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = middleware.EmployeeID(r.Context())

	grantRequest, err := l.grantService.FileGrantRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave grant request filed successfully", grantRequest)
}

// ReviewGrantRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ReviewGrantRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.ReviewGrantRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ReviewerID = middleware.EmployeeID(r.Context())

	grantRequest, err := l.grantService.ReviewGrantRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave grant request reviewed", grantRequest)
}

// ListGrantRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListGrantRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := l.grantService.ListGrantRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, requests)
}

// Journal

// journalFilter scopes employees to their own entries. Admins may pass
// ?employee_id= or omit it for everyone.
func journalFilter(r *http.Request) leave.JournalFilter {
	q := r.URL.Query()
	filter := leave.JournalFilter{
		EmployeeID: middleware.EmployeeID(r.Context()),
		From:       q.Get("from"),
		To:         q.Get("to"),
	}
	if middleware.IsAdmin(r) {
		filter.EmployeeID = q.Get("employee_id")
	}
	return filter
}

// ListTransactions implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := l.journalService.List(r.Context(), journalFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, transactions)
}

// ExportTransactions implements LeaveHandler. The workbook is built in full
// before any byte is written, so failures still get a JSON error.
func (l *LeaveHandlerImpl) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := l.journalService.Export(r.Context(), journalFilter(r), &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leave-transactions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write journal export", "error", err)
	}
}

// Holidays

// CreateHoliday implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateHolidayRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	holiday, err := l.holidayService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", holiday)
}

// ListHolidays implements LeaveHandler. ?year= narrows the list.
func (l *LeaveHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "Invalid year", map[string]string{"year": "year must be a number"})
			return
		}
		year = y
	}

	holidays, err := l.holidayService.ListHolidays(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, holidays)
}
