package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
)

type applicationRepo struct{ s *Store }

func (r *applicationRepo) Create(ctx context.Context, a leave.LeaveApplication) (leave.LeaveApplication, error) {
	err := r.s.write(ctx, func(d *dataset) error {
		if _, ok := d.leaveTypes[a.LeaveTypeID]; !ok {
			return leave.ErrLeaveTypeNotFound
		}
		a.ID = newID()
		if a.FiledAt.IsZero() {
			a.FiledAt = r.s.now()
		}
		d.applications[a.ID] = a
		return nil
	})
	if err != nil {
		return leave.LeaveApplication{}, err
	}
	return a, nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	var out leave.LeaveApplication
	err := r.s.read(func(d *dataset) error {
		a, ok := d.applications[id]
		if !ok {
			return leave.ErrApplicationNotFound
		}
		out = withTypeName(d, a)
		return nil
	})
	return out, err
}

func (r *applicationRepo) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveApplication, error) {
	var out []leave.LeaveApplication
	err := r.s.read(func(d *dataset) error {
		for _, a := range d.applications {
			if a.EmployeeID == employeeID {
				out = append(out, withTypeName(d, a))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b leave.LeaveApplication) int {
		return cmp.Or(b.FiledAt.Compare(a.FiledAt), cmp.Compare(b.ID, a.ID))
	})
	return out, err
}

func (r *applicationRepo) HasOverlappingLeave(ctx context.Context, employeeID, leaveTypeID string, start, end time.Time) (bool, error) {
	found := false
	err := r.s.read(func(d *dataset) error {
		for _, day := range d.days {
			if day.Status != leave.DayStatusSubmitted && day.Status != leave.DayStatusApproved {
				continue
			}
			if day.Date.Before(start) || day.Date.After(end) {
				continue
			}
			a := d.applications[day.LeaveApplicationID]
			if a.EmployeeID == employeeID && a.LeaveTypeID == leaveTypeID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *applicationRepo) SetPending(ctx context.Context, id string, pending bool) error {
	return r.s.write(ctx, func(d *dataset) error {
		a, ok := d.applications[id]
		if !ok {
			return leave.ErrApplicationNotFound
		}
		a.IsPending = pending
		d.applications[id] = a
		return nil
	})
}

func withTypeName(d *dataset, a leave.LeaveApplication) leave.LeaveApplication {
	if lt, ok := d.leaveTypes[a.LeaveTypeID]; ok {
		name := lt.Name
		a.LeaveTypeName = &name
	}
	return a
}

type dayRepo struct{ s *Store }

func (r *dayRepo) CreateBatch(ctx context.Context, days []leave.LeaveApplicationDay) ([]leave.LeaveApplicationDay, error) {
	out := make([]leave.LeaveApplicationDay, 0, len(days))
	err := r.s.write(ctx, func(d *dataset) error {
		for _, day := range days {
			if _, ok := d.applications[day.LeaveApplicationID]; !ok {
				return leave.ErrApplicationNotFound
			}
		}
		for _, day := range days {
			day.ID = newID()
			d.days[day.ID] = day
			out = append(out, day)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dayRepo) ListByApplication(ctx context.Context, applicationID string) ([]leave.LeaveApplicationDay, error) {
	var out []leave.LeaveApplicationDay
	err := r.s.read(func(d *dataset) error {
		for _, day := range d.days {
			if day.LeaveApplicationID == applicationID {
				out = append(out, day)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b leave.LeaveApplicationDay) int { return a.Date.Compare(b.Date) })
	return out, err
}

// ListContexts returns contexts in dayIDs order. Unknown ids are skipped.
func (r *dayRepo) ListContexts(ctx context.Context, dayIDs []string) ([]leave.DayContext, error) {
	var out []leave.DayContext
	err := r.s.read(func(d *dataset) error {
		for _, id := range dayIDs {
			day, ok := d.days[id]
			if !ok {
				continue
			}
			a := d.applications[day.LeaveApplicationID]
			lt := d.leaveTypes[a.LeaveTypeID]
			out = append(out, leave.DayContext{
				Day:         day,
				EmployeeID:  a.EmployeeID,
				LeaveTypeID: a.LeaveTypeID,
				TimeUnit:    lt.TimeUnit,
			})
		}
		return nil
	})
	return out, err
}

func (r *dayRepo) UpdateStatus(ctx context.Context, dayIDs []string, status leave.DayStatus, approverID *string, approvedAt *time.Time) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(d *dataset) error {
		for _, id := range dayIDs {
			day, ok := d.days[id]
			if !ok || day.Status != leave.DayStatusSubmitted {
				continue
			}
			day.Status = status
			day.ApproverEmployeeID = approverID
			day.ApprovedAt = approvedAt
			d.days[id] = day
			n++
		}
		return nil
	})
	return n, err
}

func (r *dayRepo) CountPending(ctx context.Context, applicationID string) (int, error) {
	n := 0
	err := r.s.read(func(d *dataset) error {
		for _, day := range d.days {
			if day.LeaveApplicationID == applicationID && !day.Status.IsTerminal() {
				n++
			}
		}
		return nil
	})
	return n, err
}
