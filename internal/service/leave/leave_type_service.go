package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
)

type LeaveTypeService struct {
	leave.LeaveTypeRepository
}

func NewLeaveTypeService(leaveTypeRepository leave.LeaveTypeRepository) *LeaveTypeService {
	return &LeaveTypeService{LeaveTypeRepository: leaveTypeRepository}
}

func (s *LeaveTypeService) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	created, err := s.LeaveTypeRepository.Create(ctx, leave.LeaveType{
		Code:                  strings.ToUpper(req.Code),
		Name:                  strings.TrimSpace(req.Name),
		GrantBasis:            req.GrantBasis,
		TimeUnit:              req.TimeUnit,
		Credit:                req.Credit,
		NoticeDays:            req.NoticeDays,
		IsFutureFilingAllowed: req.IsFutureFilingAllowed,
		IsApprovalNeeded:      req.IsApprovalNeeded,
		IsCarriedOver:         req.IsCarriedOver,
		IsActive:              true,
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to create leave type: %w", err)
	}

	slog.Info("Created leave type", "leave_type_id", created.ID, "code", created.Code)
	return leave.NewLeaveTypeResponse(created), nil
}

func (s *LeaveTypeService) UpdateLeaveType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	patch := req.ToPatch()
	if patch.IsEmpty() {
		return s.GetLeaveType(ctx, req.ID)
	}

	updated, err := s.LeaveTypeRepository.Update(ctx, req.ID, patch)
	if err != nil {
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to update leave type: %w", err)
	}
	return leave.NewLeaveTypeResponse(updated), nil
}

// DeactivateLeaveType is a soft delete; balances and history keep referencing the type.
func (s *LeaveTypeService) DeactivateLeaveType(ctx context.Context, id string) error {
	inactive := false
	if _, err := s.LeaveTypeRepository.Update(ctx, id, leave.LeaveTypePatch{IsActive: &inactive}); err != nil {
		return fmt.Errorf("failed to deactivate leave type: %w", err)
	}
	slog.Info("Deactivated leave type", "leave_type_id", id)
	return nil
}

func (s *LeaveTypeService) GetLeaveType(ctx context.Context, id string) (leave.LeaveTypeResponse, error) {
	lt, err := s.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	return leave.NewLeaveTypeResponse(lt), nil
}

func (s *LeaveTypeService) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveTypeResponse, error) {
	types, err := s.LeaveTypeRepository.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	responses := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, lt := range types {
		responses = append(responses, leave.NewLeaveTypeResponse(lt))
	}
	return responses, nil
}

type HolidayService struct {
	leave.HolidayRepository
}

func NewHolidayService(holidayRepository leave.HolidayRepository) *HolidayService {
	return &HolidayService{HolidayRepository: holidayRepository}
}

func (s *HolidayService) CreateHoliday(ctx context.Context, req leave.CreateHolidayRequest) (leave.HolidayResponse, error) {
	date, err := req.Validate()
	if err != nil {
		return leave.HolidayResponse{}, err
	}

	created, err := s.HolidayRepository.Create(ctx, leave.Holiday{Date: date, Name: strings.TrimSpace(req.Name)})
	if err != nil {
		return leave.HolidayResponse{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return leave.NewHolidayResponse(created), nil
}

func (s *HolidayService) ListHolidays(ctx context.Context, year int) ([]leave.HolidayResponse, error) {
	holidays, err := s.HolidayRepository.List(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	responses := make([]leave.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, leave.NewHolidayResponse(h))
	}
	return responses, nil
}
