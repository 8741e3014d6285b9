package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
)

type grantRequestRepo struct{ s *Store }

func (r *grantRequestRepo) Create(ctx context.Context, g leave.LeaveGrantRequest) (leave.LeaveGrantRequest, error) {
	err := r.s.write(ctx, func(d *dataset) error {
		if _, ok := d.leaveTypes[g.LeaveTypeID]; !ok {
			return leave.ErrLeaveTypeNotFound
		}
		g.ID = newID()
		g.CreatedAt = r.s.now()
		d.grantRequests[g.ID] = g
		return nil
	})
	if err != nil {
		return leave.LeaveGrantRequest{}, err
	}
	return g, nil
}

func (r *grantRequestRepo) GetByID(ctx context.Context, id string) (leave.LeaveGrantRequest, error) {
	var out leave.LeaveGrantRequest
	err := r.s.read(func(d *dataset) error {
		g, ok := d.grantRequests[id]
		if !ok {
			return leave.ErrGrantRequestNotFound
		}
		out = g
		return nil
	})
	return out, err
}

func (r *grantRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveGrantRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *grantRequestRepo) List(ctx context.Context, status *leave.DayStatus) ([]leave.LeaveGrantRequest, error) {
	var out []leave.LeaveGrantRequest
	err := r.s.read(func(d *dataset) error {
		for _, g := range d.grantRequests {
			if status == nil || g.Status == *status {
				out = append(out, g)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b leave.LeaveGrantRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, err
}

func (r *grantRequestRepo) UpdateStatus(ctx context.Context, id string, status leave.DayStatus, reviewerID string, reviewedAt time.Time) error {
	return r.s.write(ctx, func(d *dataset) error {
		g, ok := d.grantRequests[id]
		if !ok {
			return leave.ErrGrantRequestNotFound
		}
		g.Status = status
		g.ReviewerID = &reviewerID
		g.ReviewedAt = &reviewedAt
		d.grantRequests[id] = g
		return nil
	})
}
