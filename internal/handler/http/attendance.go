package http

import (
	"net/http"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/response"
)

type AttendanceHandler interface {
	TimeIn(w http.ResponseWriter, r *http.Request)
	TimeOut(w http.ResponseWriter, r *http.Request)
	ListMyLogs(w http.ResponseWriter, r *http.Request)
	ListMyExceptions(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// TimeIn implements AttendanceHandler. The request body is ignored; the log
// is stamped with the server clock.
func (h *attendanceHandlerImpl) TimeIn(w http.ResponseWriter, r *http.Request) {
	req := attendance.TimeInRequest{EmployeeID: middleware.EmployeeID(r.Context())}

	log, err := h.attendanceService.RecordTimeIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time-in recorded", log)
}

// TimeOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) TimeOut(w http.ResponseWriter, r *http.Request) {
	req := attendance.TimeOutRequest{EmployeeID: middleware.EmployeeID(r.Context())}

	result, err := h.attendanceService.RecordTimeOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// ListMyLogs implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListMyLogs(w http.ResponseWriter, r *http.Request) {
	filter := attendance.MyLogsFilter{
		EmployeeID: middleware.EmployeeID(r.Context()),
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	}

	logs, err := h.attendanceService.ListMyLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, logs)
}

// ListMyExceptions implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListMyExceptions(w http.ResponseWriter, r *http.Request) {
	exceptions, err := h.attendanceService.ListExceptions(r.Context(), middleware.EmployeeID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, exceptions)
}
