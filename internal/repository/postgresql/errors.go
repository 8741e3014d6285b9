package postgresql

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/leave-engine/internal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// Constraint names from migrations/001_schema.sql
const (
	constraintOneOpenLog     = "attendance_logs_one_open_per_employee"
	constraintLeaveTypeCode  = "leave_types_code_key"
	constraintBalancePerYear = "employee_leave_balances_employee_type_year_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// mapErr turns pgx.ErrNoRows, and ids that are not valid uuids, into
// notFound. Every other driver error is wrapped as a persistence failure.
func mapErr(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation) {
			return notFound
		}
	}
	return apperror.Persistence(op, err)
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}
