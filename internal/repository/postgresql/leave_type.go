package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveTypeColumns = `
	id, code, name, grant_basis, time_unit, credit,
	notice_days, is_future_filing_allowed, is_approval_needed, is_carried_over, is_active,
	created_at, updated_at
`

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(
		&lt.ID, &lt.Code, &lt.Name, &lt.GrantBasis, &lt.TimeUnit, &lt.Credit,
		&lt.NoticeDays, &lt.IsFutureFilingAllowed, &lt.IsApprovalNeeded, &lt.IsCarriedOver, &lt.IsActive,
		&lt.CreatedAt, &lt.UpdatedAt,
	)
	return lt, err
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return leave.LeaveType{}, err
	}

	query := `
		INSERT INTO leave_types (
			id, code, name, grant_basis, time_unit, credit,
			notice_days, is_future_filing_allowed, is_approval_needed, is_carried_over, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + leaveTypeColumns

	created, err := scanLeaveType(q.QueryRow(ctx, query,
		id, lt.Code, lt.Name, lt.GrantBasis, lt.TimeUnit, lt.Credit,
		lt.NoticeDays, lt.IsFutureFilingAllowed, lt.IsApprovalNeeded, lt.IsCarriedOver, lt.IsActive,
	))
	if err != nil {
		if isUniqueViolation(err, constraintLeaveTypeCode) {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeExists
		}
		return leave.LeaveType{}, mapErr("create leave type", err, nil)
	}
	return created, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE id = $1`
	lt, err := scanLeaveType(q.QueryRow(ctx, query, id))
	if err != nil {
		return leave.LeaveType{}, mapErr("get leave type", err, leave.ErrLeaveTypeNotFound)
	}
	return lt, nil
}

// GetByCode implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE UPPER(code) = UPPER($1)`
	lt, err := scanLeaveType(q.QueryRow(ctx, query, code))
	if err != nil {
		return leave.LeaveType{}, mapErr("get leave type by code", err, leave.ErrLeaveTypeNotFound)
	}
	return lt, nil
}

// List implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE ($1 = FALSE OR is_active) ORDER BY code`
	return r.list(ctx, query, activeOnly)
}

// ListGrantable implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) ListGrantable(ctx context.Context) ([]leave.LeaveType, error) {
	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE is_active AND grant_basis <> $1 ORDER BY code`
	return r.list(ctx, query, leave.GrantBasisSpecial)
}

func (r *leaveTypeRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr("list leave types", err, nil)
	}
	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.LeaveType, error) {
		return scanLeaveType(row)
	})
	if err != nil {
		return nil, mapErr("scan leave types", err, nil)
	}
	return types, nil
}

// Update implements leave.LeaveTypeRepository. Only the columns a
// leave.LeaveTypePatch knows about can be written.
func (r *leaveTypeRepositoryImpl) Update(ctx context.Context, id string, patch leave.LeaveTypePatch) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses := make([]string, 0, len(assignments)+1)
	args := make([]any, 0, len(assignments)+1)
	for i, a := range assignments {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", a.Column, i+1))
		args = append(args, a.Value)
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE leave_types SET %s WHERE id = $%d RETURNING `+leaveTypeColumns,
		strings.Join(setClauses, ", "), len(args),
	)

	lt, err := scanLeaveType(q.QueryRow(ctx, query, args...))
	if err != nil {
		return leave.LeaveType{}, mapErr("update leave type", err, leave.ErrLeaveTypeNotFound)
	}
	return lt, nil
}
