package leave

import (
	"context"
	"testing"
	"time"

	"go-payday/internal/employee"
	employeeerrors "go-payday/internal/employee/errors"
	"go-payday/internal/events"
	leaveerrors "go-payday/internal/leave/errors"
	"go-payday/internal/notification"
	"go-payday/internal/shared/clock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn         func(ctx context.Context, l *LeaveRequest) error
	findByIDFn       func(ctx context.Context, id string) (*LeaveRequest, error)
	hasOutstandingFn func(ctx context.Context, employeeID string) (bool, error)
	transitionFn     func(ctx context.Context, id, from, to string) (bool, error)
	markStartedFn    func(ctx context.Context, id string, at time.Time) (bool, error)
	approvedCovering    []LeaveRequest
	approvedEndedBefore []LeaveRequest
	pendingStale        []LeaveRequest
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, l *LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}
func (f *fakeRepo) FindAll(ctx context.Context) ([]LeaveRequest, error) { return nil, nil }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRepo) HasOutstanding(ctx context.Context, employeeID string) (bool, error) {
	if f.hasOutstandingFn != nil {
		return f.hasOutstandingFn(ctx, employeeID)
	}
	return false, nil
}
func (f *fakeRepo) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, statuses []string) ([]LeaveRequest, error) {
	return nil, nil
}
func (f *fakeRepo) Transition(ctx context.Context, id, from, to string) (bool, error) {
	if f.transitionFn != nil {
		return f.transitionFn(ctx, id, from, to)
	}
	return true, nil
}
func (f *fakeRepo) MarkStarted(ctx context.Context, id string, at time.Time) (bool, error) {
	if f.markStartedFn != nil {
		return f.markStartedFn(ctx, id, at)
	}
	return true, nil
}
func (f *fakeRepo) FindApprovedCovering(ctx context.Context, date time.Time) ([]LeaveRequest, error) {
	return f.approvedCovering, nil
}
func (f *fakeRepo) FindApprovedEndedBefore(ctx context.Context, date time.Time) ([]LeaveRequest, error) {
	return f.approvedEndedBefore, nil
}
func (f *fakeRepo) FindPendingStartedBefore(ctx context.Context, date time.Time) ([]LeaveRequest, error) {
	return f.pendingStale, nil
}

type fakeEmployeeRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*employee.Employee, error)
	deductLeaveCreditFn func(ctx context.Context, id string, days int) (bool, error)
	addToTotalSalaryFn  func(ctx context.Context, id string, delta int64) error
	setDayOffFn         func(ctx context.Context, id string, dayOff bool) error
}

func (f *fakeEmployeeRepo) WithTx(tx *gorm.DB) employee.Repository            { return f }
func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return &employee.Employee{FullName: "Ana Cruz", Email: "ana@example.com"}, nil
}
func (f *fakeEmployeeRepo) Update(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) Delete(ctx context.Context, id string) error            { return nil }
func (f *fakeEmployeeRepo) AddToTotalSalary(ctx context.Context, id string, delta int64) error {
	if f.addToTotalSalaryFn != nil {
		return f.addToTotalSalaryFn(ctx, id, delta)
	}
	return nil
}
func (f *fakeEmployeeRepo) ResetTotalSalary(ctx context.Context, id string) error { return nil }
func (f *fakeEmployeeRepo) DeductLeaveCredit(ctx context.Context, id string, days int) (bool, error) {
	if f.deductLeaveCreditFn != nil {
		return f.deductLeaveCreditFn(ctx, id, days)
	}
	return true, nil
}
func (f *fakeEmployeeRepo) SetDayOff(ctx context.Context, id string, dayOff bool) error {
	if f.setDayOffFn != nil {
		return f.setDayOffFn(ctx, id, dayOff)
	}
	return nil
}
func (f *fakeEmployeeRepo) SetAllStatus(ctx context.Context, status string) error { return nil }

type fakeNotifier struct {
	updates []notification.LeaveUpdate
}

func (f *fakeNotifier) SendPayslip(ctx context.Context, ev events.PayrollProcessedEvent) {}
func (f *fakeNotifier) SendLeaveUpdate(ctx context.Context, upd notification.LeaveUpdate) {
	f.updates = append(f.updates, upd)
}

func newLeaveFixture(t *testing.T, repo Repository, empRepo employee.Repository, notifier notification.Service, now time.Time) (Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	svc := NewService(gdb, repo, empRepo, notifier, clock.Fixed(now))
	return svc, mock, func() { db.Close() }
}

func TestCreate_ComputesInclusiveDays(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	var created *LeaveRequest
	repo := &fakeRepo{
		createFn: func(ctx context.Context, l *LeaveRequest) error {
			created = l
			return nil
		},
	}
	svc, mock, closeDB := newLeaveFixture(t, repo, &fakeEmployeeRepo{}, &fakeNotifier{}, now)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: uuid.NewString(),
		LeaveType:  "VACATION",
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-04",
		WithPay:    true,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, created.DaysRequested)
	assert.Equal(t, StatusPending, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RejectsOutstandingRequest(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		hasOutstandingFn: func(ctx context.Context, employeeID string) (bool, error) {
			return true, nil
		},
	}
	svc, mock, closeDB := newLeaveFixture(t, repo, &fakeEmployeeRepo{}, &fakeNotifier{}, now)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: uuid.NewString(),
		LeaveType:  "VACATION",
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-04",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrOutstandingLeave)
}

func TestCreate_RejectsInvertedRange(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc, _, closeDB := newLeaveFixture(t, &fakeRepo{}, &fakeEmployeeRepo{}, &fakeNotifier{}, now)
	defer closeDB()

	_, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: uuid.NewString(),
		LeaveType:  "VACATION",
		StartDate:  "2026-03-04",
		EndDate:    "2026-03-02",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
}

func TestCreate_RejectsPastStartDate(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, _, closeDB := newLeaveFixture(t, &fakeRepo{}, &fakeEmployeeRepo{}, &fakeNotifier{}, now)
	defer closeDB()

	_, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: uuid.NewString(),
		LeaveType:  "VACATION",
		StartDate:  "2026-03-09",
		EndDate:    "2026-03-11",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrStartDateInPast)
}

func pendingLeave(status string) *LeaveRequest {
	return &LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    uuid.New(),
		LeaveType:     "VACATION",
		StartDate:     time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		DaysRequested: 3,
		Status:        status,
	}
}

func TestApprove_DeductsCreditAndNotifies(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	l := pendingLeave(StatusProcessing)

	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) { return l, nil },
	}
	var deductedDays int
	empRepo := &fakeEmployeeRepo{
		deductLeaveCreditFn: func(ctx context.Context, id string, days int) (bool, error) {
			deductedDays = days
			return true, nil
		},
	}
	notifier := &fakeNotifier{}
	svc, mock, closeDB := newLeaveFixture(t, repo, empRepo, notifier, now)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Approve(context.Background(), l.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Equal(t, 3, deductedDays)
	assert.Len(t, notifier.updates, 1)
	assert.Equal(t, "Leave Request Approved", notifier.updates[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_InsufficientCreditRollsBack(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	l := pendingLeave(StatusProcessing)

	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) { return l, nil },
	}
	empRepo := &fakeEmployeeRepo{
		deductLeaveCreditFn: func(ctx context.Context, id string, days int) (bool, error) {
			return false, nil
		},
	}
	notifier := &fakeNotifier{}
	svc, mock, closeDB := newLeaveFixture(t, repo, empRepo, notifier, now)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), l.ID.String())
	assert.ErrorIs(t, err, employeeerrors.ErrInsufficientLeaveCredit)
	assert.Empty(t, notifier.updates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_RequiresProcessingState(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	l := pendingLeave(StatusPending)

	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) { return l, nil },
		transitionFn: func(ctx context.Context, id, from, to string) (bool, error) {
			return false, nil
		},
	}
	svc, mock, closeDB := newLeaveFixture(t, repo, &fakeEmployeeRepo{}, &fakeNotifier{}, now)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), l.ID.String())
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidTransition)
}

func TestProcess_MovesPendingToProcessing(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	l := pendingLeave(StatusPending)

	var from, to string
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) { return l, nil },
		transitionFn: func(ctx context.Context, id, f2, t2 string) (bool, error) {
			from, to = f2, t2
			return true, nil
		},
	}
	svc, _, closeDB := newLeaveFixture(t, repo, &fakeEmployeeRepo{}, &fakeNotifier{}, now)
	defer closeDB()

	resp, err := svc.Process(context.Background(), l.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusProcessing, resp.Status)
	assert.Equal(t, StatusPending, from)
	assert.Equal(t, StatusProcessing, to)
}

func TestReject_NotifiesEmployee(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	l := pendingLeave(StatusProcessing)

	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) { return l, nil },
	}
	notifier := &fakeNotifier{}
	svc, _, closeDB := newLeaveFixture(t, repo, &fakeEmployeeRepo{}, notifier, now)
	defer closeDB()

	resp, err := svc.Reject(context.Background(), l.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, resp.Status)
	assert.Len(t, notifier.updates, 1)
	assert.Equal(t, "Leave Request Rejected", notifier.updates[0].Subject)
}

func TestGetByID_UnknownLeave(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc, _, closeDB := newLeaveFixture(t, &fakeRepo{}, &fakeEmployeeRepo{}, &fakeNotifier{}, now)
	defer closeDB()

	_, err := svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
}
