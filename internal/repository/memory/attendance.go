package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
)

type attendanceLogRepo struct{ s *Store }

func (r *attendanceLogRepo) Create(ctx context.Context, log attendance.AttendanceLog) (attendance.AttendanceLog, error) {
	err := r.s.write(ctx, func(d *dataset) error {
		for _, existing := range d.logs {
			if existing.EmployeeID == log.EmployeeID && existing.IsOpen() {
				return attendance.ErrAlreadyTimedIn
			}
		}
		now := r.s.now()
		log.ID = newID()
		log.CreatedAt = now
		log.UpdatedAt = now
		d.logs[log.ID] = log
		return nil
	})
	if err != nil {
		return attendance.AttendanceLog{}, err
	}
	return log, nil
}

func (r *attendanceLogRepo) GetOpenByEmployee(ctx context.Context, employeeID string) (attendance.AttendanceLog, error) {
	var out attendance.AttendanceLog
	err := r.s.read(func(d *dataset) error {
		for _, l := range d.logs {
			if l.EmployeeID == employeeID && l.IsOpen() {
				out = l
				return nil
			}
		}
		return attendance.ErrNoOpenLog
	})
	return out, err
}

func (r *attendanceLogRepo) SetTimeOut(ctx context.Context, id string, timeOut time.Time) error {
	return r.s.write(ctx, func(d *dataset) error {
		l, ok := d.logs[id]
		if !ok {
			return attendance.ErrLogNotFound
		}
		if !l.IsOpen() {
			return attendance.ErrNoOpenLog
		}
		l.TimeOut = &timeOut
		l.UpdatedAt = r.s.now()
		d.logs[id] = l
		return nil
	})
}

func (r *attendanceLogRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceLog, error) {
	var out []attendance.AttendanceLog
	err := r.s.read(func(d *dataset) error {
		for _, l := range d.logs {
			if l.EmployeeID != employeeID {
				continue
			}
			if !from.IsZero() && l.Date.Before(from) {
				continue
			}
			if !to.IsZero() && l.Date.After(to) {
				continue
			}
			out = append(out, l)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b attendance.AttendanceLog) int { return b.TimeIn.Compare(a.TimeIn) })
	return out, err
}

type attendanceExceptionRepo struct{ s *Store }

func (r *attendanceExceptionRepo) Create(ctx context.Context, exception attendance.AttendanceException) (attendance.AttendanceException, error) {
	err := r.s.write(ctx, func(d *dataset) error {
		if _, ok := d.logs[exception.AttendanceLogID]; !ok {
			return attendance.ErrLogNotFound
		}
		exception.ID = newID()
		exception.CreatedAt = r.s.now()
		d.exceptions[exception.ID] = exception
		return nil
	})
	if err != nil {
		return attendance.AttendanceException{}, err
	}
	return exception, nil
}

func (r *attendanceExceptionRepo) ListByEmployee(ctx context.Context, employeeID string) ([]attendance.AttendanceException, error) {
	var out []attendance.AttendanceException
	err := r.s.read(func(d *dataset) error {
		for _, e := range d.exceptions {
			l, ok := d.logs[e.AttendanceLogID]
			if !ok || l.EmployeeID != employeeID {
				continue
			}
			emp, date := l.EmployeeID, l.Date
			e.EmployeeID = &emp
			e.LogDate = &date
			out = append(out, e)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b attendance.AttendanceException) int {
		return cmp.Or(b.LogDate.Compare(*a.LogDate), b.CreatedAt.Compare(a.CreatedAt))
	})
	return out, err
}
