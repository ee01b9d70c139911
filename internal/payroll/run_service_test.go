package payroll

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-payday/internal/attendance"
	"go-payday/internal/employee"
	"go-payday/internal/holiday"
	"go-payday/internal/leave"
	"go-payday/internal/messaging/kafka"
	"go-payday/internal/shared/clock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakePayrollRepo struct {
	createFn              func(ctx context.Context, p *PayrollRecord) error
	existsForRunDateFn    func(ctx context.Context, employeeID string, runDate time.Time) (bool, error)
	findLatestPeriodEndFn func(ctx context.Context) (*time.Time, error)
}

func (f *fakePayrollRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakePayrollRepo) Create(ctx context.Context, p *PayrollRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}
func (f *fakePayrollRepo) ExistsForRunDate(ctx context.Context, employeeID string, runDate time.Time) (bool, error) {
	if f.existsForRunDateFn != nil {
		return f.existsForRunDateFn(ctx, employeeID, runDate)
	}
	return false, nil
}
func (f *fakePayrollRepo) FindLatestPeriodEnd(ctx context.Context) (*time.Time, error) {
	if f.findLatestPeriodEndFn != nil {
		return f.findLatestPeriodEndFn(ctx)
	}
	return nil, nil
}
func (f *fakePayrollRepo) FindAll(ctx context.Context) ([]PayrollRecord, error) { return nil, nil }
func (f *fakePayrollRepo) FindByEmployee(ctx context.Context, employeeID string) ([]PayrollRecord, error) {
	return nil, nil
}

type fakeEmployeeRepo struct {
	findAllFn          func(ctx context.Context) ([]employee.Employee, error)
	resetTotalSalaryFn func(ctx context.Context, id string) error
}

func (f *fakeEmployeeRepo) WithTx(tx *gorm.DB) employee.Repository         { return f }
func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) FindAll(ctx context.Context) ([]employee.Employee, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}
func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return &employee.Employee{}, nil
}
func (f *fakeEmployeeRepo) Update(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) Delete(ctx context.Context, id string) error            { return nil }
func (f *fakeEmployeeRepo) AddToTotalSalary(ctx context.Context, id string, delta int64) error {
	return nil
}
func (f *fakeEmployeeRepo) ResetTotalSalary(ctx context.Context, id string) error {
	if f.resetTotalSalaryFn != nil {
		return f.resetTotalSalaryFn(ctx, id)
	}
	return nil
}
func (f *fakeEmployeeRepo) DeductLeaveCredit(ctx context.Context, id string, days int) (bool, error) {
	return true, nil
}
func (f *fakeEmployeeRepo) SetDayOff(ctx context.Context, id string, dayOff bool) error { return nil }
func (f *fakeEmployeeRepo) SetAllStatus(ctx context.Context, status string) error       { return nil }

type fakeAttendanceRepo struct {
	findRangeFn func(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Attendance, error)
}

func (f *fakeAttendanceRepo) WithTx(tx *gorm.DB) attendance.Repository { return f }
func (f *fakeAttendanceRepo) Create(ctx context.Context, a *attendance.Attendance) error {
	return nil
}
func (f *fakeAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, d time.Time) (*attendance.Attendance, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) FindRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Attendance, error) {
	if f.findRangeFn != nil {
		return f.findRangeFn(ctx, employeeID, start, end)
	}
	return nil, nil
}
func (f *fakeAttendanceRepo) CloseOut(ctx context.Context, id string, timeOut time.Time, hours float64) (bool, error) {
	return true, nil
}

type fakeLeaveRepo struct{}

func (f *fakeLeaveRepo) WithTx(tx *gorm.DB) leave.Repository                 { return f }
func (f *fakeLeaveRepo) Create(ctx context.Context, l *leave.LeaveRequest) error { return nil }
func (f *fakeLeaveRepo) FindAll(ctx context.Context) ([]leave.LeaveRequest, error) {
	return nil, nil
}
func (f *fakeLeaveRepo) FindByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return nil, nil
}
func (f *fakeLeaveRepo) HasOutstanding(ctx context.Context, employeeID string) (bool, error) {
	return false, nil
}
func (f *fakeLeaveRepo) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, statuses []string) ([]leave.LeaveRequest, error) {
	return nil, nil
}
func (f *fakeLeaveRepo) Transition(ctx context.Context, id, from, to string) (bool, error) {
	return true, nil
}
func (f *fakeLeaveRepo) MarkStarted(ctx context.Context, id string, at time.Time) (bool, error) {
	return true, nil
}
func (f *fakeLeaveRepo) FindApprovedCovering(ctx context.Context, d time.Time) ([]leave.LeaveRequest, error) {
	return nil, nil
}
func (f *fakeLeaveRepo) FindApprovedEndedBefore(ctx context.Context, d time.Time) ([]leave.LeaveRequest, error) {
	return nil, nil
}
func (f *fakeLeaveRepo) FindPendingStartedBefore(ctx context.Context, d time.Time) ([]leave.LeaveRequest, error) {
	return nil, nil
}

type fakeHolidayService struct{}

func (f *fakeHolidayService) Create(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	return holiday.HolidayResponse{}, nil
}
func (f *fakeHolidayService) GetAll(ctx context.Context) ([]holiday.HolidayResponse, error) {
	return nil, nil
}
func (f *fakeHolidayService) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeHolidayService) DatesIn(ctx context.Context, start, end time.Time) map[string]bool {
	return map[string]bool{}
}
func (f *fakeHolidayService) IsHoliday(ctx context.Context, d time.Time) bool { return false }

type fakeOutboxRepo struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error                { return nil }
func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func newTestGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gdb, mock, func() { db.Close() }
}

func newRunFixture(t *testing.T, repo *fakePayrollRepo, empRepo *fakeEmployeeRepo, outbox *fakeOutboxRepo) (Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	gdb, mock, closeDB := newTestGormDB(t)

	clk := clock.Fixed(time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC))
	svc := NewService(
		gdb, repo, empRepo, &fakeAttendanceRepo{}, &fakeLeaveRepo{},
		&fakeHolidayService{}, outbox, nil, clk,
	)
	return svc, mock, closeDB
}

func TestRun_WritesLedgerAndQueuesEvent(t *testing.T) {
	hourlyID := uuid.New()
	fixedID := uuid.New()

	empRepo := &fakeEmployeeRepo{
		findAllFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{
				{ID: hourlyID, FullName: "Ana Cruz", Email: "ana@example.com", Classification: employee.ClassificationRankAndFile, BasicSalary: 800_000},
				{ID: fixedID, FullName: "Ben Reyes", Email: "ben@example.com", Classification: employee.ClassificationManagerial, BasicSalary: 3_000_000},
			}, nil
		},
	}

	var written []PayrollRecord
	repo := &fakePayrollRepo{
		createFn: func(ctx context.Context, p *PayrollRecord) error {
			written = append(written, *p)
			return nil
		},
	}

	var resets []string
	empRepo.resetTotalSalaryFn = func(ctx context.Context, id string) error {
		resets = append(resets, id)
		return nil
	}

	outbox := &fakeOutboxRepo{}
	svc, mock, closeDB := newRunFixture(t, repo, empRepo, outbox)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	report, err := svc.Run(context.Background(), time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, "2026-03-01", report.PeriodStart)
	assert.Equal(t, "2026-03-15", report.PeriodEnd)

	assert.Len(t, written, 2)
	for _, rec := range written {
		assert.GreaterOrEqual(t, rec.TotalPay, int64(0))
	}

	// Only the hourly employee's accumulator resets.
	assert.Equal(t, []string{hourlyID.String()}, resets)

	assert.Len(t, outbox.created, 2)
	assert.Equal(t, "payroll_processed", outbox.created[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SkipsAlreadyProcessed(t *testing.T) {
	empRepo := &fakeEmployeeRepo{
		findAllFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{{ID: uuid.New(), Classification: employee.ClassificationRankAndFile}}, nil
		},
	}
	created := 0
	repo := &fakePayrollRepo{
		existsForRunDateFn: func(ctx context.Context, employeeID string, runDate time.Time) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, p *PayrollRecord) error {
			created++
			return nil
		},
	}

	svc, mock, closeDB := newRunFixture(t, repo, empRepo, &fakeOutboxRepo{})
	defer closeDB()

	report, err := svc.Run(context.Background(), time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_UniqueViolationIsSkipNotFailure(t *testing.T) {
	empRepo := &fakeEmployeeRepo{
		findAllFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{{ID: uuid.New(), Classification: employee.ClassificationManagerial, BasicSalary: 100}}, nil
		},
	}
	repo := &fakePayrollRepo{
		createFn: func(ctx context.Context, p *PayrollRecord) error {
			return &pgconn.PgError{Code: "23505"}
		},
	}

	svc, mock, closeDB := newRunFixture(t, repo, empRepo, &fakeOutboxRepo{})
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectRollback()

	report, err := svc.Run(context.Background(), time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_OneFailingEmployeeDoesNotAbortBatch(t *testing.T) {
	badID := uuid.New()
	goodID := uuid.New()

	empRepo := &fakeEmployeeRepo{
		findAllFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{
				{ID: badID, Classification: employee.ClassificationRankAndFile, BasicSalary: 800_000},
				{ID: goodID, Classification: employee.ClassificationManagerial, BasicSalary: 3_000_000},
			}, nil
		},
	}
	attendRepo := &fakeAttendanceRepo{
		findRangeFn: func(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Attendance, error) {
			if employeeID == badID.String() {
				return nil, errors.New("store unreachable")
			}
			return nil, nil
		},
	}

	gdb, mock, closeDB := newTestGormDB(t)
	defer closeDB()

	svc := NewService(
		gdb, &fakePayrollRepo{}, empRepo, attendRepo, &fakeLeaveRepo{},
		&fakeHolidayService{}, &fakeOutboxRepo{}, nil,
		clock.Fixed(time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC)),
	)

	mock.ExpectBegin()
	mock.ExpectCommit()

	report, err := svc.Run(context.Background(), time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_CorruptHistoryAbortsRun(t *testing.T) {
	badEnd := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	repo := &fakePayrollRepo{
		findLatestPeriodEndFn: func(ctx context.Context) (*time.Time, error) {
			return &badEnd, nil
		},
	}

	svc, mock, closeDB := newRunFixture(t, repo, &fakeEmployeeRepo{}, &fakeOutboxRepo{})
	defer closeDB()

	_, err := svc.Run(context.Background(), time.Date(2026, time.March, 25, 17, 0, 0, 0, time.UTC))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Drives the real outbox repository over the same sqlmock connection the
// service transacts on; the ordered expectations prove the payslip event
// row is written between BEGIN and COMMIT of the ledger transaction.
func TestRun_PayslipEventSharesLedgerTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	empRepo := &fakeEmployeeRepo{
		findAllFn: func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{
				{ID: uuid.New(), FullName: "Ana Cruz", Email: "ana@example.com", Classification: employee.ClassificationManagerial, BasicSalary: 3_000_000},
			}, nil
		},
	}

	svc := NewService(
		gdb, &fakePayrollRepo{}, empRepo, &fakeAttendanceRepo{}, &fakeLeaveRepo{},
		&fakeHolidayService{}, kafka.NewOutboxRepository(db), nil,
		clock.Fixed(time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC)),
	)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO outbox_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	report, err := svc.Run(context.Background(), time.Date(2026, time.March, 15, 17, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
