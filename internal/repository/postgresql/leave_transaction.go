package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTransactionRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTransactionRepository(db *database.DB) leave.LeaveTransactionRepository {
	return &leaveTransactionRepositoryImpl{db: db}
}

// CreateBatch implements leave.LeaveTransactionRepository. Entries are queued
// on one pgx.Batch and sent in a single round trip.
func (r *leaveTransactionRepositoryImpl) CreateBatch(ctx context.Context, entries []leave.LeaveTransaction) error {
	if len(entries) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_transactions (
			id, batch_id, employee_id, leave_type_id, leave_application_id, attendance_exception_id,
			transaction_type, time_unit, quantity, date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		id := e.ID
		if id == "" {
			var err error
			if id, err = newID(); err != nil {
				return err
			}
		}
		batch.Queue(query,
			id, e.BatchID, e.EmployeeID, e.LeaveTypeID, e.LeaveApplicationID, e.AttendanceExceptionID,
			e.TransactionType, e.TimeUnit, e.Quantity, e.Date,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return mapErr("insert leave transaction", err, nil)
		}
	}
	return nil
}

// List implements leave.LeaveTransactionRepository.
func (r *leaveTransactionRepositoryImpl) List(ctx context.Context, filter leave.TransactionFilter) ([]leave.LeaveTransaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, batch_id, employee_id, leave_type_id, leave_application_id, attendance_exception_id,
			   transaction_type, time_unit, quantity, date, created_at
		FROM leave_transactions
		WHERE ($1 = '' OR employee_id = $1)
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date < $3::date + 1)
		ORDER BY date, created_at, id
	`
	rows, err := q.Query(ctx, query, filter.EmployeeID, nullDate(filter.From), nullDate(filter.To))
	if err != nil {
		return nil, mapErr("list leave transactions", err, nil)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.LeaveTransaction, error) {
		var t leave.LeaveTransaction
		err := row.Scan(
			&t.ID, &t.BatchID, &t.EmployeeID, &t.LeaveTypeID, &t.LeaveApplicationID, &t.AttendanceExceptionID,
			&t.TransactionType, &t.TimeUnit, &t.Quantity, &t.Date, &t.CreatedAt,
		)
		return t, err
	})
	if err != nil {
		return nil, mapErr("scan leave transactions", err, nil)
	}
	return entries, nil
}

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// Create implements leave.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, holiday leave.Holiday) (leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return leave.Holiday{}, err
	}

	var created leave.Holiday
	err = q.QueryRow(ctx,
		`INSERT INTO holidays (id, date, name) VALUES ($1, $2, $3) RETURNING id, date, name`,
		id, holiday.Date, holiday.Name,
	).Scan(&created.ID, &created.Date, &created.Name)
	if err != nil {
		return leave.Holiday{}, mapErr("create holiday", err, nil)
	}
	return created, nil
}

// List implements leave.HolidayRepository. A zero year lists everything.
func (r *holidayRepositoryImpl) List(ctx context.Context, year int) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, date, name FROM holidays
		WHERE ($1 = 0 OR EXTRACT(YEAR FROM date)::int = $1)
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, mapErr("list holidays", err, nil)
	}
	holidays, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.Holiday, error) {
		var h leave.Holiday
		err := row.Scan(&h.ID, &h.Date, &h.Name)
		return h, err
	})
	if err != nil {
		return nil, mapErr("scan holidays", err, nil)
	}
	return holidays, nil
}

// HolidaysBetween implements leave.HolidayCalendar.
func (r *holidayRepositoryImpl) HolidaysBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT DISTINCT date FROM holidays WHERE date BETWEEN $1 AND $2 ORDER BY date`,
		from, to,
	)
	if err != nil {
		return nil, mapErr("list holidays between", err, nil)
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[time.Time])
	if err != nil {
		return nil, mapErr("scan holiday dates", err, nil)
	}
	return dates, nil
}
