package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-payday/internal/attendance"
	"go-payday/internal/employee"
	employeeerrors "go-payday/internal/employee/errors"
	"go-payday/internal/events"
	"go-payday/internal/holiday"
	"go-payday/internal/leave"
	"go-payday/internal/messaging/kafka"
	payrollerrors "go-payday/internal/payroll/errors"
	"go-payday/internal/shared/clock"
	"go-payday/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const runLockTTL = 15 * time.Minute

func runLockKey(runDate time.Time) string {
	return "payroll:run:" + runDate.Format("2006-01-02")
}

//go:generate mockgen -source=run_service.go -destination=mock/run_service_mock.go -package=mock
type Service interface {
	// Run executes one payroll batch for runDate. Safe to call twice:
	// a redis lock keeps concurrent triggers out and the ledger's unique
	// index absorbs anything that slips through.
	Run(ctx context.Context, runDate time.Time) (RunReport, error)

	GetAll(ctx context.Context) ([]PayrollResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]PayrollResponse, error)

	// Timesheet is the reconciled per-day view of an arbitrary range,
	// the same classification payroll itself uses.
	Timesheet(ctx context.Context, employeeID string, start, end time.Time) (TimesheetResponse, error)
}

type service struct {
	db           *gorm.DB
	repo         Repository
	employeeRepo employee.Repository
	attendRepo   attendance.Repository
	leaveRepo    leave.Repository
	holidaySvc   holiday.Service
	outbox       kafka.OutboxRepository
	rdb          *redis.Client
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	attendRepo attendance.Repository,
	leaveRepo leave.Repository,
	holidaySvc holiday.Service,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		attendRepo:   attendRepo,
		leaveRepo:    leaveRepo,
		holidaySvc:   holidaySvc,
		outbox:       outbox,
		rdb:          rdb,
		clk:          clk,
		logger:       l,
	}
}

func (s *service) Run(ctx context.Context, runDate time.Time) (RunReport, error) {
	runDate = clock.DateOf(runDate.In(s.clk.Location()))

	if s.rdb != nil {
		acquired, err := s.rdb.SetNX(ctx, runLockKey(runDate), "1", runLockTTL).Result()
		if err != nil {
			s.logger.Warn("payroll run lock unavailable, relying on the ledger constraint",
				zap.Error(err),
			)
		} else if !acquired {
			return RunReport{}, payrollerrors.ErrRunInProgress
		} else {
			defer s.rdb.Del(context.WithoutCancel(ctx), runLockKey(runDate))
		}
	}

	lastEnd, err := s.repo.FindLatestPeriodEnd(ctx)
	if err != nil {
		return RunReport{}, err
	}
	period, err := ResolvePeriod(runDate, lastEnd)
	if err != nil {
		s.logger.Error("payroll run aborted, period history is corrupt",
			zap.Timep("last_period_end", lastEnd),
			zap.Error(err),
		)
		return RunReport{}, err
	}

	employees, err := s.employeeRepo.FindAll(ctx)
	if err != nil {
		return RunReport{}, err
	}

	holidays := s.holidaySvc.DatesIn(ctx, period.Start, period.End)

	report := RunReport{
		RunDate:     runDate.Format("2006-01-02"),
		PeriodStart: period.Start.Format("2006-01-02"),
		PeriodEnd:   period.End.Format("2006-01-02"),
	}

	s.logger.Info("payroll run started",
		zap.String("run_date", report.RunDate),
		zap.String("period", period.String()),
		zap.Int("employees", len(employees)),
	)

	for _, emp := range employees {
		outcome, err := s.processEmployee(ctx, emp, period, runDate, holidays)
		switch {
		case err != nil:
			report.Failed++
			s.logger.Error("employee payroll failed, continuing with the rest",
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
		case outcome == outcomeSkipped:
			report.Skipped++
		default:
			report.Processed++
		}
	}

	s.logger.Info("payroll run finished",
		zap.String("run_date", report.RunDate),
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

type runOutcome int

const (
	outcomeProcessed runOutcome = iota
	outcomeSkipped
)

func (s *service) processEmployee(
	ctx context.Context,
	emp employee.Employee,
	period Period,
	runDate time.Time,
	holidays map[string]bool,
) (runOutcome, error) {
	exists, err := s.repo.ExistsForRunDate(ctx, emp.ID.String(), runDate)
	if err != nil {
		return outcomeSkipped, err
	}
	if exists {
		s.logger.Info("already processed today, skipping",
			zap.String("employee_id", emp.ID.String()),
			zap.String("run_date", runDate.Format("2006-01-02")),
		)
		return outcomeSkipped, nil
	}

	rows, err := s.attendRepo.FindRange(ctx, emp.ID.String(), period.Start, period.End)
	if err != nil {
		return outcomeSkipped, err
	}
	leaves, err := s.leaveRepo.FindOverlapping(
		ctx, emp.ID.String(), period.Start, period.End,
		[]string{leave.StatusApproved, leave.StatusDone},
	)
	if err != nil {
		return outcomeSkipped, err
	}

	reconciled := Reconcile(period, rows, leaves, holidays, s.logger)
	breakdown := ComputePay(emp, reconciled.Days)

	record := &PayrollRecord{
		ID:           uuid.New(),
		EmployeeID:   emp.ID,
		RunDate:      runDate,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,
		HoursWorked:  reconciled.TotalHours,
		RegularPay:   breakdown.RegularPay,
		OvertimePay:  breakdown.OvertimePay,
		Deduction:    breakdown.Deduction,
		TotalPay:     breakdown.FinalPay,
		AbsenceCount: reconciled.AbsenceCount,
	}

	tx := s.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return outcomeSkipped, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
		if isUniqueViolation(err) {
			s.logger.Info("concurrent run already wrote this ledger row, skipping",
				zap.String("employee_id", emp.ID.String()),
				zap.String("run_date", runDate.Format("2006-01-02")),
			)
			return outcomeSkipped, nil
		}
		return outcomeSkipped, err
	}

	if !emp.FixedSalary() {
		if err := s.employeeRepo.WithTx(tx).ResetTotalSalary(ctx, emp.ID.String()); err != nil {
			return outcomeSkipped, err
		}
	}

	if s.outbox != nil {
		if err := s.queuePayslipEvent(ctx, tx, emp, *record); err != nil {
			return outcomeSkipped, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return outcomeSkipped, err
	}

	s.logger.Info("payroll record written",
		zap.String("employee_id", emp.ID.String()),
		zap.Int64("total_pay", record.TotalPay),
		zap.Float64("hours_worked", record.HoursWorked),
		zap.Int("absences", record.AbsenceCount),
	)
	return outcomeProcessed, nil
}

func (s *service) queuePayslipEvent(ctx context.Context, tx *gorm.DB, emp employee.Employee, record PayrollRecord) error {
	// The outbox repository speaks database/sql; inside a gorm transaction
	// the connection pool is the underlying *sql.Tx.
	sqlTx, ok := tx.Statement.ConnPool.(*sql.Tx)
	if !ok {
		return errors.New("payslip event requires a transaction")
	}

	rid := contextutil.GetRequestID(ctx)

	event := events.PayrollProcessedEvent{
		EventType:    "payroll_processed",
		PayrollID:    record.ID.String(),
		EmployeeID:   emp.ID.String(),
		EmployeeName: emp.FullName,
		Email:        emp.Email,
		PhoneNumber:  emp.PhoneNumber,
		PeriodStart:  record.PeriodStart.Format("2006-01-02"),
		PeriodEnd:    record.PeriodEnd.Format("2006-01-02"),
		HoursWorked:  record.HoursWorked,
		TotalPay:     record.TotalPay,
		OvertimePay:  record.OvertimePay,
		AbsenceCount: record.AbsenceCount,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(sqlTx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll",
		AggregateID:   record.ID.String(),
		EventType:     event.EventType,
		Topic:         events.PayrollProcessedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) GetAll(ctx context.Context) ([]PayrollResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]PayrollResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, payrollerrors.ErrInvalidEmployeeID
	}
	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) Timesheet(ctx context.Context, employeeID string, start, end time.Time) (TimesheetResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return TimesheetResponse{}, payrollerrors.ErrInvalidEmployeeID
	}
	if _, err := s.employeeRepo.FindByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimesheetResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return TimesheetResponse{}, err
	}

	rows, err := s.attendRepo.FindRange(ctx, employeeID, start, end)
	if err != nil {
		return TimesheetResponse{}, err
	}
	leaves, err := s.leaveRepo.FindOverlapping(
		ctx, employeeID, start, end,
		[]string{leave.StatusApproved, leave.StatusDone},
	)
	if err != nil {
		return TimesheetResponse{}, err
	}

	holidays := s.holidaySvc.DatesIn(ctx, start, end)
	reconciled := Reconcile(Period{Start: start, End: end}, rows, leaves, holidays, s.logger)

	resp := TimesheetResponse{
		EmployeeID:   employeeID,
		Start:        start.Format("2006-01-02"),
		End:          end.Format("2006-01-02"),
		Days:         make([]TimesheetDay, 0, len(reconciled.Days)),
		TotalHours:   reconciled.TotalHours,
		AbsenceCount: reconciled.AbsenceCount,
	}
	for _, d := range reconciled.Days {
		resp.Days = append(resp.Days, TimesheetDay{
			Date:    d.Date.Format("2006-01-02"),
			Status:  d.Status,
			Hours:   d.Hours,
			Holiday: d.Holiday,
		})
	}
	return resp, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}
