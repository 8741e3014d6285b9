// Package memory is an in-process implementation of every repository plus a
// transactor. It backs the unit tests and the DB_DRIVER=memory mode.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/google/uuid"
)

type txKey struct{}

type dataset struct {
	logs          map[string]attendance.AttendanceLog
	exceptions    map[string]attendance.AttendanceException
	leaveTypes    map[string]leave.LeaveType
	balances      map[string]leave.EmployeeLeaveBalance
	applications  map[string]leave.LeaveApplication
	days          map[string]leave.LeaveApplicationDay
	transactions  []leave.LeaveTransaction
	holidays      map[string]leave.Holiday
	grantRequests map[string]leave.LeaveGrantRequest
}

func newDataset() *dataset {
	return &dataset{
		logs:          make(map[string]attendance.AttendanceLog),
		exceptions:    make(map[string]attendance.AttendanceException),
		leaveTypes:    make(map[string]leave.LeaveType),
		balances:      make(map[string]leave.EmployeeLeaveBalance),
		applications:  make(map[string]leave.LeaveApplication),
		days:          make(map[string]leave.LeaveApplicationDay),
		holidays:      make(map[string]leave.Holiday),
		grantRequests: make(map[string]leave.LeaveGrantRequest),
	}
}

// clone copies the tables. Entities are values, so a shallow map copy is enough.
func (d *dataset) clone() *dataset {
	return &dataset{
		logs:          maps.Clone(d.logs),
		exceptions:    maps.Clone(d.exceptions),
		leaveTypes:    maps.Clone(d.leaveTypes),
		balances:      maps.Clone(d.balances),
		applications:  maps.Clone(d.applications),
		days:          maps.Clone(d.days),
		transactions:  slices.Clone(d.transactions),
		holidays:      maps.Clone(d.holidays),
		grantRequests: maps.Clone(d.grantRequests),
	}
}

// Store holds all tables. Transactions are serialized by txMu; a failed
// transaction restores the snapshot taken when it began.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	data  *dataset
	clock clock.Clock
}

func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Store{data: newDataset(), clock: clk}
}

// WithinTx implements database.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) restore(snapshot *dataset) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write runs fn with exclusive access. Outside a transaction it also takes
// txMu so a single write cannot interleave with a running transaction.
func (s *Store) write(ctx context.Context, fn func(d *dataset) error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(fn func(d *dataset) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Sprintf("generate uuid: %v", err))
	}
	return id.String()
}

// Repository accessors

func (s *Store) AttendanceLogs() attendance.AttendanceLogRepository { return &attendanceLogRepo{s} }

func (s *Store) AttendanceExceptions() attendance.AttendanceExceptionRepository {
	return &attendanceExceptionRepo{s}
}

func (s *Store) LeaveTypes() leave.LeaveTypeRepository { return &leaveTypeRepo{s} }

func (s *Store) Balances() leave.LeaveBalanceRepository { return &balanceRepo{s} }

func (s *Store) Applications() leave.LeaveApplicationRepository { return &applicationRepo{s} }

func (s *Store) ApplicationDays() leave.LeaveApplicationDayRepository { return &dayRepo{s} }

func (s *Store) Transactions() leave.LeaveTransactionRepository { return &transactionRepo{s} }

func (s *Store) Holidays() leave.HolidayRepository { return &holidayRepo{s} }

func (s *Store) GrantRequests() leave.LeaveGrantRequestRepository { return &grantRequestRepo{s} }
