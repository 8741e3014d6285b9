package leave

import "github.com/shopspring/decimal"

// Mutable leave_types columns. Code, grant basis and time unit are fixed at creation.
const (
	ColumnName                  = "name"
	ColumnCredit                = "credit"
	ColumnNoticeDays            = "notice_days"
	ColumnIsFutureFilingAllowed = "is_future_filing_allowed"
	ColumnIsApprovalNeeded      = "is_approval_needed"
	ColumnIsCarriedOver         = "is_carried_over"
	ColumnIsActive              = "is_active"
)

// LeaveTypePatch is a partial update restricted to the mutable columns.
type LeaveTypePatch struct {
	Name                  *string
	Credit                *decimal.Decimal
	NoticeDays            *int
	IsFutureFilingAllowed *bool
	IsApprovalNeeded      *bool
	IsCarriedOver         *bool
	IsActive              *bool
}

// Assignment is a single column = value pair of a patch.
type Assignment struct {
	Column string
	Value  any
}

// Assignments lists the set fields in a fixed column order.
func (p LeaveTypePatch) Assignments() []Assignment {
	var out []Assignment
	if p.Name != nil {
		out = append(out, Assignment{ColumnName, *p.Name})
	}
	if p.Credit != nil {
		out = append(out, Assignment{ColumnCredit, *p.Credit})
	}
	if p.NoticeDays != nil {
		out = append(out, Assignment{ColumnNoticeDays, *p.NoticeDays})
	}
	if p.IsFutureFilingAllowed != nil {
		out = append(out, Assignment{ColumnIsFutureFilingAllowed, *p.IsFutureFilingAllowed})
	}
	if p.IsApprovalNeeded != nil {
		out = append(out, Assignment{ColumnIsApprovalNeeded, *p.IsApprovalNeeded})
	}
	if p.IsCarriedOver != nil {
		out = append(out, Assignment{ColumnIsCarriedOver, *p.IsCarriedOver})
	}
	if p.IsActive != nil {
		out = append(out, Assignment{ColumnIsActive, *p.IsActive})
	}
	return out
}

func (p LeaveTypePatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

// Apply returns lt with the patch applied.
func (p LeaveTypePatch) Apply(lt LeaveType) LeaveType {
	if p.Name != nil {
		lt.Name = *p.Name
	}
	if p.Credit != nil {
		lt.Credit = *p.Credit
	}
	if p.NoticeDays != nil {
		lt.NoticeDays = *p.NoticeDays
	}
	if p.IsFutureFilingAllowed != nil {
		lt.IsFutureFilingAllowed = *p.IsFutureFilingAllowed
	}
	if p.IsApprovalNeeded != nil {
		lt.IsApprovalNeeded = *p.IsApprovalNeeded
	}
	if p.IsCarriedOver != nil {
		lt.IsCarriedOver = *p.IsCarriedOver
	}
	if p.IsActive != nil {
		lt.IsActive = *p.IsActive
	}
	return lt
}
