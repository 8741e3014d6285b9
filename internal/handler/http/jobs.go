package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/cron"
)

// JobRunner runs a named ledger job on demand.
type JobRunner interface {
	Run(ctx context.Context, name string) (leave.JobResult, error)
}

type JobsHandler interface {
	AccrueMonthly(w http.ResponseWriter, r *http.Request)
	CarryOver(w http.ResponseWriter, r *http.Request)
}

type jobsHandlerImpl struct {
	runner JobRunner
}

func NewJobsHandler(runner JobRunner) JobsHandler {
	return &jobsHandlerImpl{runner: runner}
}

func (h *jobsHandlerImpl) AccrueMonthly(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, cron.JobAccrueMonthly)
}

func (h *jobsHandlerImpl) CarryOver(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, cron.JobCarryOver)
}

func (h *jobsHandlerImpl) run(w http.ResponseWriter, r *http.Request, name string) {
	result, err := h.runner.Run(r.Context(), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Job completed", result)
}
