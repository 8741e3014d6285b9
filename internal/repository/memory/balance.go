package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type balanceRepo struct{ s *Store }

func (r *balanceRepo) Create(ctx context.Context, b leave.EmployeeLeaveBalance) (leave.EmployeeLeaveBalance, error) {
	err := r.s.write(ctx, func(d *dataset) error {
		for _, existing := range d.balances {
			if existing.EmployeeID == b.EmployeeID && existing.LeaveTypeID == b.LeaveTypeID && existing.Year == b.Year {
				return leave.ErrBalanceAlreadyGranted
			}
		}
		now := r.s.now()
		b.ID = newID()
		b.CreatedAt = now
		b.UpdatedAt = now
		d.balances[b.ID] = b
		return nil
	})
	if err != nil {
		return leave.EmployeeLeaveBalance{}, err
	}
	return b, nil
}

// latest must be called with the data lock held.
func latest(d *dataset, employeeID, leaveTypeID string) (leave.EmployeeLeaveBalance, bool) {
	var out leave.EmployeeLeaveBalance
	found := false
	for _, b := range d.balances {
		if b.EmployeeID != employeeID || b.LeaveTypeID != leaveTypeID {
			continue
		}
		if !found || b.Year > out.Year {
			out = b
			found = true
		}
	}
	return out, found
}

func (r *balanceRepo) GetLatest(ctx context.Context, employeeID, leaveTypeID string) (leave.EmployeeLeaveBalance, error) {
	var out leave.EmployeeLeaveBalance
	err := r.s.read(func(d *dataset) error {
		b, ok := latest(d, employeeID, leaveTypeID)
		if !ok {
			return leave.ErrBalanceNotFound
		}
		out = withType(d, b)
		return nil
	})
	return out, err
}

// GetLatestForUpdate needs no extra locking here: transactions already hold txMu.
func (r *balanceRepo) GetLatestForUpdate(ctx context.Context, employeeID, leaveTypeID string) (leave.EmployeeLeaveBalance, error) {
	return r.GetLatest(ctx, employeeID, leaveTypeID)
}

func (r *balanceRepo) Exists(ctx context.Context, employeeID, leaveTypeID string, year int) (bool, error) {
	found := false
	err := r.s.read(func(d *dataset) error {
		for _, b := range d.balances {
			if b.EmployeeID == employeeID && b.LeaveTypeID == leaveTypeID && b.Year == year {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *balanceRepo) ListByEmployee(ctx context.Context, employeeID string) ([]leave.EmployeeLeaveBalance, error) {
	var out []leave.EmployeeLeaveBalance
	err := r.s.read(func(d *dataset) error {
		for _, b := range d.balances {
			if b.EmployeeID == employeeID {
				out = append(out, withType(d, b))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b leave.EmployeeLeaveBalance) int {
		return cmp.Or(cmp.Compare(b.Year, a.Year), strings.Compare(deref(a.LeaveTypeCode), deref(b.LeaveTypeCode)))
	})
	return out, err
}

func (r *balanceRepo) AddEarned(ctx context.Context, id string, amount decimal.Decimal) (leave.EmployeeLeaveBalance, error) {
	return r.mutate(ctx, id, func(b *leave.EmployeeLeaveBalance) {
		b.Earned = b.Earned.Add(amount)
		b.RemainingCredit = b.RemainingCredit.Add(amount)
	})
}

func (r *balanceRepo) AddDeducted(ctx context.Context, id string, amount decimal.Decimal) (leave.EmployeeLeaveBalance, error) {
	return r.mutate(ctx, id, func(b *leave.EmployeeLeaveBalance) {
		b.Deducted = b.Deducted.Add(amount)
		b.RemainingCredit = b.RemainingCredit.Sub(amount)
	})
}

func (r *balanceRepo) AddUsed(ctx context.Context, id string, amount decimal.Decimal) (leave.EmployeeLeaveBalance, error) {
	return r.mutate(ctx, id, func(b *leave.EmployeeLeaveBalance) {
		b.Used = b.Used.Add(amount)
		b.RemainingCredit = b.RemainingCredit.Sub(amount)
	})
}

func (r *balanceRepo) mutate(ctx context.Context, id string, fn func(b *leave.EmployeeLeaveBalance)) (leave.EmployeeLeaveBalance, error) {
	var out leave.EmployeeLeaveBalance
	err := r.s.write(ctx, func(d *dataset) error {
		b, ok := d.balances[id]
		if !ok {
			return leave.ErrBalanceNotFound
		}
		fn(&b)
		b.UpdatedAt = r.s.now()
		d.balances[id] = b
		out = withType(d, b)
		return nil
	})
	return out, err
}

func (r *balanceRepo) AccrueByTypeCodes(ctx context.Context, codes []string, amount decimal.Decimal) (int64, error) {
	return r.mutateLatestByCodes(ctx, codes, func(b *leave.EmployeeLeaveBalance) {
		b.Earned = b.Earned.Add(amount)
		b.RemainingCredit = b.RemainingCredit.Add(amount)
	})
}

func (r *balanceRepo) CarryOverByTypeCodes(ctx context.Context, codes []string) (int64, error) {
	return r.mutateLatestByCodes(ctx, codes, func(b *leave.EmployeeLeaveBalance) {
		b.CarryIn = b.RemainingCredit
		b.RemainingCredit = b.StartingCredit.Add(b.CarryIn)
		b.Earned = decimal.Zero
		b.Used = decimal.Zero
		b.Deducted = decimal.Zero
	})
}

func (r *balanceRepo) mutateLatestByCodes(ctx context.Context, codes []string, fn func(b *leave.EmployeeLeaveBalance)) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(d *dataset) error {
		now := r.s.now()
		seen := make(map[[2]string]bool)
		for _, b := range d.balances {
			lt, ok := d.leaveTypes[b.LeaveTypeID]
			if !ok || !slices.ContainsFunc(codes, func(c string) bool { return strings.EqualFold(c, lt.Code) }) {
				continue
			}
			key := [2]string{b.EmployeeID, b.LeaveTypeID}
			if seen[key] {
				continue
			}
			seen[key] = true
			target, _ := latest(d, b.EmployeeID, b.LeaveTypeID)
			fn(&target)
			target.UpdatedAt = now
			d.balances[target.ID] = target
			n++
		}
		return nil
	})
	return n, err
}

func withType(d *dataset, b leave.EmployeeLeaveBalance) leave.EmployeeLeaveBalance {
	if lt, ok := d.leaveTypes[b.LeaveTypeID]; ok {
		code, name := lt.Code, lt.Name
		b.LeaveTypeCode = &code
		b.LeaveTypeName = &name
	}
	return b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
