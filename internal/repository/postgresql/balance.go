package postgresql

import (
	"context"
	"strings"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const balanceColumns = `
	b.id, b.employee_id, b.leave_type_id, b.year,
	b.starting_credit, b.earned, b.used, b.deducted, b.carry_in, b.remaining_credit,
	b.created_at, b.updated_at, lt.code, lt.name
`

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func scanBalance(row pgx.Row) (leave.EmployeeLeaveBalance, error) {
	var b leave.EmployeeLeaveBalance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.StartingCredit, &b.Earned, &b.Used, &b.Deducted, &b.CarryIn, &b.RemainingCredit,
		&b.CreatedAt, &b.UpdatedAt, &b.LeaveTypeCode, &b.LeaveTypeName,
	)
	return b, err
}

// Create implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, balance leave.EmployeeLeaveBalance) (leave.EmployeeLeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return leave.EmployeeLeaveBalance{}, err
	}

	query := `
		WITH b AS (
			INSERT INTO employee_leave_balances (
				id, employee_id, leave_type_id, year,
				starting_credit, earned, used, deducted, carry_in, remaining_credit
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING *
		)
		SELECT ` + balanceColumns + `
		FROM b JOIN leave_types lt ON lt.id = b.leave_type_id
	`
	created, err := scanBalance(q.QueryRow(ctx, query,
		id, balance.EmployeeID, balance.LeaveTypeID, balance.Year,
		balance.StartingCredit, balance.Earned, balance.Used, balance.Deducted, balance.CarryIn, balance.RemainingCredit,
	))
	if err != nil {
		if isUniqueViolation(err, constraintBalancePerYear) {
			return leave.EmployeeLeaveBalance{}, leave.ErrBalanceAlreadyGranted
		}
		return leave.EmployeeLeaveBalance{}, mapErr("create leave balance", err, nil)
	}
	return created, nil
}

// GetLatest implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetLatest(ctx context.Context, employeeID, leaveTypeID string) (leave.EmployeeLeaveBalance, error) {
	return r.getLatest(ctx, employeeID, leaveTypeID, "")
}

// GetLatestForUpdate implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetLatestForUpdate(ctx context.Context, employeeID, leaveTypeID string) (leave.EmployeeLeaveBalance, error) {
	return r.getLatest(ctx, employeeID, leaveTypeID, "FOR UPDATE OF b")
}

func (r *leaveBalanceRepositoryImpl) getLatest(ctx context.Context, employeeID, leaveTypeID, lock string) (leave.EmployeeLeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + balanceColumns + `
		FROM employee_leave_balances b
		JOIN leave_types lt ON lt.id = b.leave_type_id
		WHERE b.employee_id = $1 AND b.leave_type_id = $2
		ORDER BY b.year DESC
		LIMIT 1
		` + lock

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID))
	if err != nil {
		return leave.EmployeeLeaveBalance{}, mapErr("get latest leave balance", err, leave.ErrBalanceNotFound)
	}
	return b, nil
}

// Exists implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Exists(ctx context.Context, employeeID, leaveTypeID string, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM employee_leave_balances
			WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, leaveTypeID, year).Scan(&exists); err != nil {
		return false, mapErr("check leave balance", err, nil)
	}
	return exists, nil
}

// ListByEmployee implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.EmployeeLeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + balanceColumns + `
		FROM employee_leave_balances b
		JOIN leave_types lt ON lt.id = b.leave_type_id
		WHERE b.employee_id = $1
		ORDER BY b.year DESC, lt.code
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, mapErr("list leave balances", err, nil)
	}
	balances, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.EmployeeLeaveBalance, error) {
		return scanBalance(row)
	})
	if err != nil {
		return nil, mapErr("scan leave balances", err, nil)
	}
	return balances, nil
}

// AddEarned implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddEarned(ctx context.Context, id string, amount decimal.Decimal) (leave.EmployeeLeaveBalance, error) {
	return r.increment(ctx, "add earned credit", `earned = earned + $2, remaining_credit = remaining_credit + $2`, id, amount)
}

// AddDeducted implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddDeducted(ctx context.Context, id string, amount decimal.Decimal) (leave.EmployeeLeaveBalance, error) {
	return r.increment(ctx, "add deducted credit", `deducted = deducted + $2, remaining_credit = remaining_credit - $2`, id, amount)
}

// AddUsed implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddUsed(ctx context.Context, id string, amount decimal.Decimal) (leave.EmployeeLeaveBalance, error) {
	return r.increment(ctx, "add used credit", `used = used + $2, remaining_credit = remaining_credit - $2`, id, amount)
}

// increment applies set in a single statement so concurrent writers never
// lose an update.
func (r *leaveBalanceRepositoryImpl) increment(ctx context.Context, op, set, id string, amount decimal.Decimal) (leave.EmployeeLeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH b AS (
			UPDATE employee_leave_balances
			SET ` + set + `, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + balanceColumns + `
		FROM b JOIN leave_types lt ON lt.id = b.leave_type_id
	`
	b, err := scanBalance(q.QueryRow(ctx, query, id, amount))
	if err != nil {
		return leave.EmployeeLeaveBalance{}, mapErr(op, err, leave.ErrBalanceNotFound)
	}
	return b, nil
}

// latestByCodes restricts an UPDATE to the newest year row of every
// (employee, leave type) pair whose type code is in $1.
const latestByCodes = `
	FROM leave_types lt
	WHERE lt.id = b.leave_type_id
	  AND UPPER(lt.code) = ANY($1)
	  AND b.year = (
		SELECT MAX(x.year) FROM employee_leave_balances x
		WHERE x.employee_id = b.employee_id AND x.leave_type_id = b.leave_type_id
	  )
`

// AccrueByTypeCodes implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) AccrueByTypeCodes(ctx context.Context, codes []string, amount decimal.Decimal) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_leave_balances b
		SET earned = b.earned + $2,
			remaining_credit = b.remaining_credit + $2,
			updated_at = NOW()
	` + latestByCodes

	tag, err := q.Exec(ctx, query, upperAll(codes), amount)
	if err != nil {
		return 0, mapErr("accrue leave balances", err, nil)
	}
	return tag.RowsAffected(), nil
}

// CarryOverByTypeCodes implements leave.LeaveBalanceRepository. The right
// hand sides all read the pre-update row.
func (r *leaveBalanceRepositoryImpl) CarryOverByTypeCodes(ctx context.Context, codes []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_leave_balances b
		SET carry_in = b.remaining_credit,
			remaining_credit = b.starting_credit + b.remaining_credit,
			earned = 0,
			used = 0,
			deducted = 0,
			updated_at = NOW()
	` + latestByCodes

	tag, err := q.Exec(ctx, query, upperAll(codes))
	if err != nil {
		return 0, mapErr("carry over leave balances", err, nil)
	}
	return tag.RowsAffected(), nil
}

func upperAll(codes []string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = strings.ToUpper(c)
	}
	return out
}
