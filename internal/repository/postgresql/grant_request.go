package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveGrantRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveGrantRequestRepository(db *database.DB) leave.LeaveGrantRequestRepository {
	return &leaveGrantRequestRepositoryImpl{db: db}
}

const grantRequestColumns = `id, employee_id, leave_type_id, status, reviewer_id, reviewed_at, created_at`

func scanGrantRequest(row pgx.Row) (leave.LeaveGrantRequest, error) {
	var g leave.LeaveGrantRequest
	err := row.Scan(&g.ID, &g.EmployeeID, &g.LeaveTypeID, &g.Status, &g.ReviewerID, &g.ReviewedAt, &g.CreatedAt)
	return g, err
}

// Create implements leave.LeaveGrantRequestRepository.
func (r *leaveGrantRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveGrantRequest) (leave.LeaveGrantRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return leave.LeaveGrantRequest{}, err
	}

	query := `
		INSERT INTO leave_grant_requests (id, employee_id, leave_type_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + grantRequestColumns

	created, err := scanGrantRequest(q.QueryRow(ctx, query, id, request.EmployeeID, request.LeaveTypeID, request.Status))
	if err != nil {
		return leave.LeaveGrantRequest{}, mapErr("create leave grant request", err, nil)
	}
	return created, nil
}

// GetByID implements leave.LeaveGrantRequestRepository.
func (r *leaveGrantRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveGrantRequest, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate implements leave.LeaveGrantRequestRepository.
func (r *leaveGrantRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveGrantRequest, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *leaveGrantRequestRepositoryImpl) get(ctx context.Context, id, lock string) (leave.LeaveGrantRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + grantRequestColumns + ` FROM leave_grant_requests WHERE id = $1 ` + lock
	g, err := scanGrantRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		return leave.LeaveGrantRequest{}, mapErr("get leave grant request", err, leave.ErrGrantRequestNotFound)
	}
	return g, nil
}

// List implements leave.LeaveGrantRequestRepository.
func (r *leaveGrantRequestRepositoryImpl) List(ctx context.Context, status *leave.DayStatus) ([]leave.LeaveGrantRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + grantRequestColumns + `
		FROM leave_grant_requests
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
	`
	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, mapErr("list leave grant requests", err, nil)
	}
	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.LeaveGrantRequest, error) {
		return scanGrantRequest(row)
	})
	if err != nil {
		return nil, mapErr("scan leave grant requests", err, nil)
	}
	return requests, nil
}

// UpdateStatus implements leave.LeaveGrantRequestRepository.
func (r *leaveGrantRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.DayStatus, reviewerID string, reviewedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE leave_grant_requests SET status = $2, reviewer_id = $3, reviewed_at = $4 WHERE id = $1`,
		id, status, reviewerID, reviewedAt,
	)
	if err != nil {
		return mapErr("update leave grant request", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrGrantRequestNotFound
	}
	return nil
}
