package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
)

type transactionRepo struct{ s *Store }

// CreateBatch appends entries. The journal has no update or delete path.
func (r *transactionRepo) CreateBatch(ctx context.Context, entries []leave.LeaveTransaction) error {
	return r.s.write(ctx, func(d *dataset) error {
		now := r.s.now()
		for _, e := range entries {
			e.ID = newID()
			e.CreatedAt = now
			d.transactions = append(d.transactions, e)
		}
		return nil
	})
}

func (r *transactionRepo) List(ctx context.Context, filter leave.TransactionFilter) ([]leave.LeaveTransaction, error) {
	var out []leave.LeaveTransaction
	err := r.s.read(func(d *dataset) error {
		for _, t := range d.transactions {
			if filter.EmployeeID != "" && t.EmployeeID != filter.EmployeeID {
				continue
			}
			if !filter.From.IsZero() && t.Date.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && !t.Date.Before(filter.To.AddDate(0, 0, 1)) {
				continue
			}
			out = append(out, t)
		}
		return nil
	})
	return out, err
}

type holidayRepo struct{ s *Store }

func (r *holidayRepo) Create(ctx context.Context, h leave.Holiday) (leave.Holiday, error) {
	err := r.s.write(ctx, func(d *dataset) error {
		h.ID = newID()
		d.holidays[h.ID] = h
		return nil
	})
	if err != nil {
		return leave.Holiday{}, err
	}
	return h, nil
}

func (r *holidayRepo) List(ctx context.Context, year int) ([]leave.Holiday, error) {
	var out []leave.Holiday
	err := r.s.read(func(d *dataset) error {
		for _, h := range d.holidays {
			if year == 0 || h.Date.Year() == year {
				out = append(out, h)
			}
		}
		return nil
	})
	sortHolidays(out)
	return out, err
}

func (r *holidayRepo) HolidaysBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	err := r.s.read(func(d *dataset) error {
		for _, h := range d.holidays {
			if !h.Date.Before(from) && !h.Date.After(to) {
				out = append(out, h.Date)
			}
		}
		return nil
	})
	return out, err
}

func sortHolidays(hs []leave.Holiday) {
	slices.SortFunc(hs, func(a, b leave.Holiday) int { return a.Date.Compare(b.Date) })
}
