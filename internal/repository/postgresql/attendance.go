package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceLogRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceLogRepository(db *database.DB) attendance.AttendanceLogRepository {
	return &attendanceLogRepositoryImpl{db: db}
}

// Create implements attendance.AttendanceLogRepository.
func (r *attendanceLogRepositoryImpl) Create(ctx context.Context, log attendance.AttendanceLog) (attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return attendance.AttendanceLog{}, err
	}

	query := `
		INSERT INTO attendance_logs (id, employee_id, date, time_in)
		VALUES ($1, $2, $3, $4)
		RETURNING id, employee_id, date, time_in, time_out, created_at, updated_at
	`
	var created attendance.AttendanceLog
	err = q.QueryRow(ctx, query, id, log.EmployeeID, log.Date, log.TimeIn).Scan(
		&created.ID, &created.EmployeeID, &created.Date, &created.TimeIn, &created.TimeOut,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintOneOpenLog) {
			return attendance.AttendanceLog{}, attendance.ErrAlreadyTimedIn
		}
		return attendance.AttendanceLog{}, mapErr("create attendance log", err, nil)
	}
	return created, nil
}

// GetOpenByEmployee implements attendance.AttendanceLogRepository.
func (r *attendanceLogRepositoryImpl) GetOpenByEmployee(ctx context.Context, employeeID string) (attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, time_in, time_out, created_at, updated_at
		FROM attendance_logs
		WHERE employee_id = $1 AND time_out IS NULL
		FOR UPDATE
	`
	var log attendance.AttendanceLog
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&log.ID, &log.EmployeeID, &log.Date, &log.TimeIn, &log.TimeOut,
		&log.CreatedAt, &log.UpdatedAt,
	)
	if err != nil {
		return attendance.AttendanceLog{}, mapErr("get open attendance log", err, attendance.ErrNoOpenLog)
	}
	return log, nil
}

// SetTimeOut implements attendance.AttendanceLogRepository.
func (r *attendanceLogRepositoryImpl) SetTimeOut(ctx context.Context, id string, timeOut time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_logs
		SET time_out = $2, updated_at = NOW()
		WHERE id = $1 AND time_out IS NULL
	`
	tag, err := q.Exec(ctx, query, id, timeOut)
	if err != nil {
		return mapErr("set attendance time-out", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNoOpenLog
	}
	return nil
}

// ListByEmployee implements attendance.AttendanceLogRepository.
func (r *attendanceLogRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, time_in, time_out, created_at, updated_at
		FROM attendance_logs
		WHERE employee_id = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY time_in DESC
	`
	rows, err := q.Query(ctx, query, employeeID, nullDate(from), nullDate(to))
	if err != nil {
		return nil, mapErr("list attendance logs", err, nil)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.AttendanceLog, error) {
		var l attendance.AttendanceLog
		err := row.Scan(&l.ID, &l.EmployeeID, &l.Date, &l.TimeIn, &l.TimeOut, &l.CreatedAt, &l.UpdatedAt)
		return l, err
	})
	if err != nil {
		return nil, mapErr("scan attendance logs", err, nil)
	}
	return logs, nil
}

type attendanceExceptionRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceExceptionRepository(db *database.DB) attendance.AttendanceExceptionRepository {
	return &attendanceExceptionRepositoryImpl{db: db}
}

// Create implements attendance.AttendanceExceptionRepository.
func (r *attendanceExceptionRepositoryImpl) Create(ctx context.Context, exception attendance.AttendanceException) (attendance.AttendanceException, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return attendance.AttendanceException{}, err
	}

	query := `
		INSERT INTO attendance_exceptions (id, attendance_log_id, hours, is_overtime, valid_until)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, attendance_log_id, hours, is_overtime, valid_until, created_at
	`
	var created attendance.AttendanceException
	err = q.QueryRow(ctx, query, id, exception.AttendanceLogID, exception.Hours, exception.IsOvertime, exception.ValidUntil).Scan(
		&created.ID, &created.AttendanceLogID, &created.Hours, &created.IsOvertime, &created.ValidUntil, &created.CreatedAt,
	)
	if err != nil {
		return attendance.AttendanceException{}, mapErr("create attendance exception", err, nil)
	}
	return created, nil
}

// ListByEmployee implements attendance.AttendanceExceptionRepository.
func (r *attendanceExceptionRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]attendance.AttendanceException, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ae.id, ae.attendance_log_id, ae.hours, ae.is_overtime, ae.valid_until, ae.created_at,
			   al.employee_id, al.date
		FROM attendance_exceptions ae
		JOIN attendance_logs al ON al.id = ae.attendance_log_id
		WHERE al.employee_id = $1
		ORDER BY al.date DESC, ae.created_at DESC
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, mapErr("list attendance exceptions", err, nil)
	}

	exceptions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.AttendanceException, error) {
		var e attendance.AttendanceException
		err := row.Scan(&e.ID, &e.AttendanceLogID, &e.Hours, &e.IsOvertime, &e.ValidUntil, &e.CreatedAt,
			&e.EmployeeID, &e.LogDate)
		return e, err
	})
	if err != nil {
		return nil, mapErr("scan attendance exceptions", err, nil)
	}
	return exceptions, nil
}

// nullDate maps the zero time to SQL NULL.
func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
