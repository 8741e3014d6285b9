package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
)

type leaveTypeRepo struct{ s *Store }

func (r *leaveTypeRepo) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	err := r.s.write(ctx, func(d *dataset) error {
		for _, existing := range d.leaveTypes {
			if strings.EqualFold(existing.Code, lt.Code) {
				return leave.ErrLeaveTypeCodeExists
			}
		}
		now := r.s.now()
		if lt.ID == "" {
			lt.ID = newID()
		}
		lt.CreatedAt = now
		lt.UpdatedAt = now
		d.leaveTypes[lt.ID] = lt
		return nil
	})
	if err != nil {
		return leave.LeaveType{}, err
	}
	return lt, nil
}

func (r *leaveTypeRepo) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	var out leave.LeaveType
	err := r.s.read(func(d *dataset) error {
		lt, ok := d.leaveTypes[id]
		if !ok {
			return leave.ErrLeaveTypeNotFound
		}
		out = lt
		return nil
	})
	return out, err
}

func (r *leaveTypeRepo) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	var out leave.LeaveType
	err := r.s.read(func(d *dataset) error {
		for _, lt := range d.leaveTypes {
			if strings.EqualFold(lt.Code, code) {
				out = lt
				return nil
			}
		}
		return leave.ErrLeaveTypeNotFound
	})
	return out, err
}

func (r *leaveTypeRepo) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	return r.filter(func(lt leave.LeaveType) bool { return !activeOnly || lt.IsActive })
}

func (r *leaveTypeRepo) ListGrantable(ctx context.Context) ([]leave.LeaveType, error) {
	return r.filter(func(lt leave.LeaveType) bool {
		return lt.IsActive && lt.GrantBasis != leave.GrantBasisSpecial
	})
}

func (r *leaveTypeRepo) filter(keep func(leave.LeaveType) bool) ([]leave.LeaveType, error) {
	var out []leave.LeaveType
	err := r.s.read(func(d *dataset) error {
		for _, lt := range d.leaveTypes {
			if keep(lt) {
				out = append(out, lt)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b leave.LeaveType) int { return strings.Compare(a.Code, b.Code) })
	return out, err
}

func (r *leaveTypeRepo) Update(ctx context.Context, id string, patch leave.LeaveTypePatch) (leave.LeaveType, error) {
	var out leave.LeaveType
	err := r.s.write(ctx, func(d *dataset) error {
		lt, ok := d.leaveTypes[id]
		if !ok {
			return leave.ErrLeaveTypeNotFound
		}
		lt = patch.Apply(lt)
		lt.UpdatedAt = r.s.now()
		d.leaveTypes[id] = lt
		out = lt
		return nil
	})
	return out, err
}
