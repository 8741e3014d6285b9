package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const applicationColumns = `
	la.id, la.employee_id, la.leave_type_id, la.start_date, la.end_date,
	la.reason, la.is_pending, la.filed_at, lt.name
`

func scanApplication(row pgx.Row) (leave.LeaveApplication, error) {
	var a leave.LeaveApplication
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.LeaveTypeID, &a.StartDate, &a.EndDate,
		&a.Reason, &a.IsPending, &a.FiledAt, &a.LeaveTypeName,
	)
	return a, err
}

// Create implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, application leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	query := `
		INSERT INTO leave_applications (id, employee_id, leave_type_id, start_date, end_date, reason, is_pending, filed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		RETURNING id, employee_id, leave_type_id, start_date, end_date, reason, is_pending, filed_at
	`
	var created leave.LeaveApplication
	err = q.QueryRow(ctx, query,
		id, application.EmployeeID, application.LeaveTypeID, application.StartDate, application.EndDate,
		application.Reason, application.IsPending, nullDate(application.FiledAt),
	).Scan(
		&created.ID, &created.EmployeeID, &created.LeaveTypeID, &created.StartDate, &created.EndDate,
		&created.Reason, &created.IsPending, &created.FiledAt,
	)
	if err != nil {
		return leave.LeaveApplication{}, mapErr("create leave application", err, nil)
	}
	return created, nil
}

// GetByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + applicationColumns + `
		FROM leave_applications la
		JOIN leave_types lt ON lt.id = la.leave_type_id
		WHERE la.id = $1
	`
	a, err := scanApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		return leave.LeaveApplication{}, mapErr("get leave application", err, leave.ErrApplicationNotFound)
	}
	return a, nil
}

// ListByEmployee implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + applicationColumns + `
		FROM leave_applications la
		JOIN leave_types lt ON lt.id = la.leave_type_id
		WHERE la.employee_id = $1
		ORDER BY la.filed_at DESC, la.id DESC
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, mapErr("list leave applications", err, nil)
	}
	apps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.LeaveApplication, error) {
		return scanApplication(row)
	})
	if err != nil {
		return nil, mapErr("scan leave applications", err, nil)
	}
	return apps, nil
}

// HasOverlappingLeave implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) HasOverlappingLeave(ctx context.Context, employeeID, leaveTypeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_application_days d
			JOIN leave_applications a ON a.id = d.leave_application_id
			WHERE a.employee_id = $1
			  AND a.leave_type_id = $2
			  AND d.status IN ('submitted', 'approved')
			  AND d.date BETWEEN $3 AND $4
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, leaveTypeID, start, end).Scan(&exists); err != nil {
		return false, mapErr("check overlapping leave", err, nil)
	}
	return exists, nil
}

// SetPending implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) SetPending(ctx context.Context, id string, pending bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE leave_applications SET is_pending = $2 WHERE id = $1`, id, pending)
	if err != nil {
		return mapErr("set application pending", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrApplicationNotFound
	}
	return nil
}

type leaveApplicationDayRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationDayRepository(db *database.DB) leave.LeaveApplicationDayRepository {
	return &leaveApplicationDayRepositoryImpl{db: db}
}

const dayColumns = `
	d.id, d.leave_application_id, d.status, d.approver_employee_id,
	d.day_fraction, d.is_workday, d.is_holiday, d.date, d.approved_at
`

func scanDay(row pgx.Row, extra ...any) (leave.LeaveApplicationDay, error) {
	var d leave.LeaveApplicationDay
	dest := append([]any{
		&d.ID, &d.LeaveApplicationID, &d.Status, &d.ApproverEmployeeID,
		&d.DayFraction, &d.IsWorkday, &d.IsHoliday, &d.Date, &d.ApprovedAt,
	}, extra...)
	err := row.Scan(dest...)
	return d, err
}

// CreateBatch implements leave.LeaveApplicationDayRepository with a single
// multi-row insert.
func (r *leaveApplicationDayRepositoryImpl) CreateBatch(ctx context.Context, days []leave.LeaveApplicationDay) ([]leave.LeaveApplicationDay, error) {
	if len(days) == 0 {
		return []leave.LeaveApplicationDay{}, nil
	}
	q := GetQuerier(ctx, r.db)

	ids := make([]string, len(days))
	appIDs := make([]string, len(days))
	statuses := make([]string, len(days))
	fractions := make([]string, len(days))
	workdays := make([]bool, len(days))
	holidays := make([]bool, len(days))
	dates := make([]time.Time, len(days))
	for i, d := range days {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		ids[i] = id
		appIDs[i] = d.LeaveApplicationID
		statuses[i] = string(d.Status)
		fractions[i] = d.DayFraction.String()
		workdays[i] = d.IsWorkday
		holidays[i] = d.IsHoliday
		dates[i] = d.Date
	}

	query := `
		WITH d AS (
			INSERT INTO leave_application_days (
				id, leave_application_id, status, day_fraction, is_workday, is_holiday, date
			)
			SELECT * FROM UNNEST($1::uuid[], $2::uuid[], $3::text[], $4::numeric[], $5::bool[], $6::bool[], $7::date[])
			RETURNING *
		)
		SELECT ` + dayColumns + ` FROM d ORDER BY d.date
	`
	rows, err := q.Query(ctx, query, ids, appIDs, statuses, fractions, workdays, holidays, dates)
	if err != nil {
		return nil, mapErr("create leave application days", err, nil)
	}
	created, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.LeaveApplicationDay, error) {
		return scanDay(row)
	})
	if err != nil {
		return nil, mapErr("create leave application days", err, nil)
	}
	return created, nil
}

// ListByApplication implements leave.LeaveApplicationDayRepository.
func (r *leaveApplicationDayRepositoryImpl) ListByApplication(ctx context.Context, applicationID string) ([]leave.LeaveApplicationDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dayColumns + ` FROM leave_application_days d WHERE d.leave_application_id = $1 ORDER BY d.date`
	rows, err := q.Query(ctx, query, applicationID)
	if err != nil {
		return nil, mapErr("list leave application days", err, nil)
	}
	days, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.LeaveApplicationDay, error) {
		return scanDay(row)
	})
	if err != nil {
		return nil, mapErr("scan leave application days", err, nil)
	}
	return days, nil
}

// ListContexts implements leave.LeaveApplicationDayRepository. Rows come back
// in dayIDs order.
func (r *leaveApplicationDayRepositoryImpl) ListContexts(ctx context.Context, dayIDs []string) ([]leave.DayContext, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dayColumns + `, la.employee_id, la.leave_type_id, lt.time_unit
		FROM UNNEST($1::uuid[]) WITH ORDINALITY AS req(id, ord)
		JOIN leave_application_days d ON d.id = req.id
		JOIN leave_applications la ON la.id = d.leave_application_id
		JOIN leave_types lt ON lt.id = la.leave_type_id
		ORDER BY req.ord
	`
	rows, err := q.Query(ctx, query, dayIDs)
	if err != nil {
		return nil, mapErr("list leave day contexts", err, nil)
	}
	contexts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.DayContext, error) {
		var c leave.DayContext
		day, err := scanDay(row, &c.EmployeeID, &c.LeaveTypeID, &c.TimeUnit)
		c.Day = day
		return c, err
	})
	if err != nil {
		return nil, mapErr("scan leave day contexts", err, nil)
	}
	return contexts, nil
}

// UpdateStatus implements leave.LeaveApplicationDayRepository.
func (r *leaveApplicationDayRepositoryImpl) UpdateStatus(ctx context.Context, dayIDs []string, status leave.DayStatus, approverID *string, approvedAt *time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_application_days
		SET status = $2, approver_employee_id = $3, approved_at = $4
		WHERE id = ANY($1::uuid[]) AND status = 'submitted'
	`
	tag, err := q.Exec(ctx, query, dayIDs, status, approverID, approvedAt)
	if err != nil {
		return 0, mapErr("update leave day status", err, nil)
	}
	return tag.RowsAffected(), nil
}

// CountPending implements leave.LeaveApplicationDayRepository.
func (r *leaveApplicationDayRepositoryImpl) CountPending(ctx context.Context, applicationID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM leave_application_days WHERE leave_application_id = $1 AND status = 'submitted'`,
		applicationID,
	).Scan(&n)
	if err != nil {
		return 0, mapErr("count pending leave days", err, nil)
	}
	return n, nil
}
