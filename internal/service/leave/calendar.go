package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ExpandDays returns one SUBMITTED day per calendar date in [start, end].
// A zero fraction means a whole day.
func ExpandDays(applicationID string, start, end time.Time, holidays []time.Time, fraction decimal.Decimal) []leave.LeaveApplicationDay {
	if fraction.IsZero() {
		fraction = leave.DayFractionWhole
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Format(validator.DateLayout)] = struct{}{}
	}

	var days []leave.LeaveApplicationDay
	for d := clock.Date(start); !d.After(clock.Date(end)); d = d.AddDate(0, 0, 1) {
		_, isHoliday := holidaySet[d.Format(validator.DateLayout)]
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		days = append(days, leave.LeaveApplicationDay{
			LeaveApplicationID: applicationID,
			Status:             leave.DayStatusSubmitted,
			DayFraction:        fraction,
			IsHoliday:          isHoliday,
			IsWorkday:          !isHoliday && !weekend,
			Date:               d,
		})
	}
	return days
}

// CalendarService moves application days through submitted -> approved |
// rejected | cancelled and keeps the owning application's pending flag in step.
type CalendarService struct {
	leave.LeaveApplicationDayRepository
	leave.LeaveApplicationRepository
	tx    database.Transactor
	clock clock.Clock
}

func NewCalendarService(dayRepository leave.LeaveApplicationDayRepository, applicationRepository leave.LeaveApplicationRepository, tx database.Transactor, clk clock.Clock) *CalendarService {
	return &CalendarService{
		LeaveApplicationDayRepository: dayRepository,
		LeaveApplicationRepository:    applicationRepository,
		tx:                            tx,
		clock:                         clk,
	}
}

// UpdateDayStatus applies status to every day. Days already in status are
// left alone; days in another terminal status fail the whole call. It returns
// the days whose status actually changed.
func (c *CalendarService) UpdateDayStatus(ctx context.Context, dayIDs []string, status leave.DayStatus, approverID *string) (leave.StatusUpdateResult, []leave.DayContext, error) {
	ids := unique(dayIDs)
	var result leave.StatusUpdateResult
	var changed []leave.DayContext

	err := c.tx.WithinTx(ctx, func(ctx context.Context) error {
		contexts, err := c.LeaveApplicationDayRepository.ListContexts(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load leave application days: %w", err)
		}
		if len(contexts) != len(ids) {
			return leave.ErrDayNotFound
		}

		var changedIDs []string
		for _, dc := range contexts {
			switch {
			case dc.Day.Status == status:
				continue
			case dc.Day.Status.IsTerminal():
				return leave.ErrDayAlreadyProcessed
			}
			changed = append(changed, dc)
			changedIDs = append(changedIDs, dc.Day.ID)
		}
		result = leave.StatusUpdateResult{Matched: len(contexts), Changed: len(changed)}
		if len(changedIDs) == 0 {
			return nil
		}

		var approvedAt *time.Time
		if status == leave.DayStatusApproved {
			now := c.clock.Now()
			approvedAt = &now
		}

		n, err := c.LeaveApplicationDayRepository.UpdateStatus(ctx, changedIDs, status, approverID, approvedAt)
		if err != nil {
			return fmt.Errorf("failed to update leave application days: %w", err)
		}
		// a concurrent writer moved one of the days first
		if int(n) != len(changedIDs) {
			return leave.ErrDayAlreadyProcessed
		}

		for i := range changed {
			changed[i].Day.Status = status
			changed[i].Day.ApproverEmployeeID = approverID
			changed[i].Day.ApprovedAt = approvedAt
		}
		return c.settleApplications(ctx, changed)
	})
	if err != nil {
		return leave.StatusUpdateResult{}, nil, err
	}
	return result, changed, nil
}

// settleApplications clears is_pending once every day of an application is terminal.
func (c *CalendarService) settleApplications(ctx context.Context, changed []leave.DayContext) error {
	seen := make(map[string]bool)
	for _, dc := range changed {
		appID := dc.Day.LeaveApplicationID
		if seen[appID] {
			continue
		}
		seen[appID] = true

		pending, err := c.LeaveApplicationDayRepository.CountPending(ctx, appID)
		if err != nil {
			return fmt.Errorf("failed to count pending days: %w", err)
		}
		if pending > 0 {
			continue
		}
		if err := c.LeaveApplicationRepository.SetPending(ctx, appID, false); err != nil {
			return fmt.Errorf("failed to settle leave application: %w", err)
		}
	}
	return nil
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
