package leave

import (
	"context"
	"fmt"
	"io"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/export"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/google/uuid"
)

// JournalService is the append-only record of balance-affecting events.
type JournalService struct {
	leave.LeaveTransactionRepository
	clock clock.Clock
}

func NewJournalService(transactionRepository leave.LeaveTransactionRepository, clk clock.Clock) *JournalService {
	return &JournalService{
		LeaveTransactionRepository: transactionRepository,
		clock:                      clk,
	}
}

// Record stamps every entry with one batch id and one date and inserts them together.
func (j *JournalService) Record(ctx context.Context, entries []leave.JournalEntry) ([]leave.LeaveTransaction, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	batchID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate batch id: %w", err)
	}
	now := j.clock.Now()

	transactions := make([]leave.LeaveTransaction, 0, len(entries))
	for _, e := range entries {
		if (e.LeaveApplicationID == nil) == (e.AttendanceExceptionID == nil) {
			return nil, leave.ErrAmbiguousProvenance
		}
		if !e.Quantity.IsPositive() {
			return nil, leave.ErrNonPositiveQuantity
		}
		transactions = append(transactions, leave.LeaveTransaction{
			BatchID:               batchID.String(),
			EmployeeID:            e.EmployeeID,
			LeaveTypeID:           e.LeaveTypeID,
			LeaveApplicationID:    e.LeaveApplicationID,
			AttendanceExceptionID: e.AttendanceExceptionID,
			TransactionType:       e.TransactionType,
			TimeUnit:              e.TimeUnit,
			Quantity:              e.Quantity,
			Date:                  now,
		})
	}

	if err := j.LeaveTransactionRepository.CreateBatch(ctx, transactions); err != nil {
		return nil, fmt.Errorf("failed to record leave transactions: %w", err)
	}
	return transactions, nil
}

func (j *JournalService) List(ctx context.Context, filter leave.JournalFilter) ([]leave.TransactionResponse, error) {
	f, err := filter.Validate()
	if err != nil {
		return nil, err
	}

	transactions, err := j.LeaveTransactionRepository.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave transactions: %w", err)
	}

	responses := make([]leave.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, leave.NewTransactionResponse(t))
	}
	return responses, nil
}

// Export writes the filtered journal as a workbook with one sheet for leave
// usage and one for attendance exceptions.
func (j *JournalService) Export(ctx context.Context, filter leave.JournalFilter, w io.Writer) error {
	transactions, err := j.List(ctx, filter)
	if err != nil {
		return err
	}

	headers := []string{"Date", "Employee", "Leave Type", "Type", "Unit", "Quantity", "Source", "Batch"}
	leaveSheet := export.Sheet{Name: "Leave Records", Headers: headers}
	overtimeSheet := export.Sheet{Name: "Overtime Records", Headers: headers}

	for _, t := range transactions {
		row := []any{
			t.Date.Format(validator.DateLayout),
			t.EmployeeID,
			t.LeaveTypeID,
			string(t.TransactionType),
			string(t.TimeUnit),
			t.Quantity.String(),
		}
		if t.LeaveApplicationID != nil {
			leaveSheet.Rows = append(leaveSheet.Rows, append(row, *t.LeaveApplicationID, t.BatchID))
			continue
		}
		overtimeSheet.Rows = append(overtimeSheet.Rows, append(row, *t.AttendanceExceptionID, t.BatchID))
	}

	if err := export.WriteWorkbook(w, leaveSheet, overtimeSheet); err != nil {
		return fmt.Errorf("failed to export leave transactions: %w", err)
	}
	return nil
}
