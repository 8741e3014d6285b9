package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
)

type GrantService struct {
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.LeaveGrantRequestRepository
	ledger leave.LedgerService
	tx     database.Transactor
	clock  clock.Clock
}

func NewGrantService(
	leaveTypeRepository leave.LeaveTypeRepository,
	balanceRepository leave.LeaveBalanceRepository,
	grantRequestRepository leave.LeaveGrantRequestRepository,
	ledger leave.LedgerService,
	tx database.Transactor,
	clk clock.Clock,
) *GrantService {
	return &GrantService{
		LeaveTypeRepository:         leaveTypeRepository,
		LeaveBalanceRepository:      balanceRepository,
		LeaveGrantRequestRepository: grantRequestRepository,
		ledger:                      ledger,
		tx:                          tx,
		clock:                       clk,
	}
}

// GrantRegularLeaveTypes gives the employee a current-year balance for every
// active non-special leave type they do not hold yet. Calling it again is a no-op.
func (g *GrantService) GrantRegularLeaveTypes(ctx context.Context, employeeID string) ([]leave.BalanceResponse, error) {
	year := g.clock.Now().Year()
	granted := make([]leave.BalanceResponse, 0)

	err := g.tx.WithinTx(ctx, func(ctx context.Context) error {
		leaveTypes, err := g.LeaveTypeRepository.ListGrantable(ctx)
		if err != nil {
			return fmt.Errorf("failed to list grantable leave types: %w", err)
		}

		for _, lt := range leaveTypes {
			exists, err := g.LeaveBalanceRepository.Exists(ctx, employeeID, lt.ID, year)
			if err != nil {
				return fmt.Errorf("failed to check leave balance: %w", err)
			}
			if exists {
				slog.Debug("Leave balance already granted", "employee_id", employeeID, "leave_type", lt.Code, "year", year)
				continue
			}

			balance, err := g.ledger.Grant(ctx, employeeID, lt.ID, lt.Credit, year)
			if err != nil {
				return err
			}
			code, name := lt.Code, lt.Name
			balance.LeaveTypeCode, balance.LeaveTypeName = &code, &name
			granted = append(granted, leave.NewBalanceResponse(balance))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// GrantSpecialLeaveType grants one SPECIAL leave type. An existing balance for
// the current year makes it a no-op.
func (g *GrantService) GrantSpecialLeaveType(ctx context.Context, employeeID, leaveTypeID string) ([]leave.BalanceResponse, error) {
	year := g.clock.Now().Year()
	granted := make([]leave.BalanceResponse, 0, 1)

	err := g.tx.WithinTx(ctx, func(ctx context.Context) error {
		lt, err := g.specialLeaveType(ctx, leaveTypeID)
		if err != nil {
			return err
		}

		exists, err := g.LeaveBalanceRepository.Exists(ctx, employeeID, lt.ID, year)
		if err != nil {
			return fmt.Errorf("failed to check leave balance: %w", err)
		}
		if exists {
			slog.Debug("Special leave already granted", "employee_id", employeeID, "leave_type", lt.Code, "year", year)
			return nil
		}

		balance, err := g.ledger.Grant(ctx, employeeID, lt.ID, lt.Credit, year)
		if err != nil {
			return err
		}
		code, name := lt.Code, lt.Name
		balance.LeaveTypeCode, balance.LeaveTypeName = &code, &name
		granted = append(granted, leave.NewBalanceResponse(balance))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

func (g *GrantService) specialLeaveType(ctx context.Context, leaveTypeID string) (leave.LeaveType, error) {
	lt, err := g.LeaveTypeRepository.GetByID(ctx, leaveTypeID)
	if err != nil {
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	if lt.GrantBasis != leave.GrantBasisSpecial {
		return leave.LeaveType{}, leave.ErrNotSpecialLeaveType
	}
	if !lt.IsActive {
		return leave.LeaveType{}, leave.ErrLeaveTypeInactive
	}
	return lt, nil
}

func (g *GrantService) FileGrantRequest(ctx context.Context, req leave.FileGrantRequestRequest) (leave.GrantRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.GrantRequestResponse{}, err
	}
	if _, err := g.specialLeaveType(ctx, req.LeaveTypeID); err != nil {
		return leave.GrantRequestResponse{}, err
	}

	created, err := g.LeaveGrantRequestRepository.Create(ctx, leave.LeaveGrantRequest{
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		Status:      leave.DayStatusSubmitted,
	})
	if err != nil {
		return leave.GrantRequestResponse{}, fmt.Errorf("failed to create leave grant request: %w", err)
	}

	slog.Info("Filed leave grant request", "request_id", created.ID, "employee_id", created.EmployeeID)
	return leave.NewGrantRequestResponse(created), nil
}

// ReviewGrantRequest approves or rejects a submitted request. Approval grants
// the special leave type in the same transaction.
func (g *GrantService) ReviewGrantRequest(ctx context.Context, req leave.ReviewGrantRequestRequest) (leave.GrantRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.GrantRequestResponse{}, err
	}
	status, err := leave.ParseDayStatus(req.Status)
	if err != nil {
		return leave.GrantRequestResponse{}, err
	}
	if status != leave.DayStatusApproved && status != leave.DayStatusRejected {
		return leave.GrantRequestResponse{}, leave.ErrApproverStatusOnly
	}

	var reviewed leave.LeaveGrantRequest
	err = g.tx.WithinTx(ctx, func(ctx context.Context) error {
		request, err := g.LeaveGrantRequestRepository.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to get leave grant request: %w", err)
		}
		if request.Status != leave.DayStatusSubmitted {
			return leave.ErrGrantRequestProcessed
		}

		now := g.clock.Now()
		if err := g.LeaveGrantRequestRepository.UpdateStatus(ctx, request.ID, status, req.ReviewerID, now); err != nil {
			return fmt.Errorf("failed to update leave grant request: %w", err)
		}
		request.Status = status
		request.ReviewerID = &req.ReviewerID
		request.ReviewedAt = &now
		reviewed = request

		if status != leave.DayStatusApproved {
			return nil
		}
		_, err = g.GrantSpecialLeaveType(ctx, request.EmployeeID, request.LeaveTypeID)
		return err
	})
	if err != nil {
		return leave.GrantRequestResponse{}, err
	}

	slog.Info("Reviewed leave grant request", "request_id", reviewed.ID, "status", status, "reviewer_id", req.ReviewerID)
	return leave.NewGrantRequestResponse(reviewed), nil
}

func (g *GrantService) ListGrantRequests(ctx context.Context, status string) ([]leave.GrantRequestResponse, error) {
	var filter *leave.DayStatus
	if status != "" {
		parsed, err := leave.ParseDayStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}

	requests, err := g.LeaveGrantRequestRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave grant requests: %w", err)
	}

	responses := make([]leave.GrantRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewGrantRequestResponse(r))
	}
	return responses, nil
}
