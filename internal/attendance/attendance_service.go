package attendance

import (
	"context"
	"errors"
	attendanceerrors "go-payday/internal/attendance/errors"
	"go-payday/internal/employee"
	"go-payday/internal/shared/clock"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lateCutoffHour: a time-in after 08:00 local counts as LATE.
const lateCutoffHour = 8

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	TimeIn(ctx context.Context, req TimeInRequest) (AttendanceResponse, error)
	TimeOut(ctx context.Context, req TimeOutRequest) (AttendanceResponse, error)
	GetRange(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceResponse, error)
}

type service struct {
	db           *gorm.DB
	repo         Repository
	employeeRepo employee.Repository
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, employeeRepo employee.Repository, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, employeeRepo: employeeRepo, clk: clk, logger: l}
}

func (s *service) TimeIn(ctx context.Context, req TimeInRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx := s.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clk.Now()
	today := clock.DateOf(now)

	existing, err := qtx.FindByEmployeeAndDate(ctx, req.EmployeeID, today)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}
	if err == nil && existing != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyTimedIn
	}

	status := StatusPresent
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), lateCutoffHour, 0, 0, 0, now.Location())
	if now.After(cutoff) {
		status = StatusLate
	}

	row := &Attendance{
		ID:         uuid.New(),
		EmployeeID: uuid.MustParse(req.EmployeeID),
		Date:       today,
		TimeIn:     now,
		Status:     status,
	}

	if err := qtx.Create(ctx, row); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit().Error; err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("time-in recorded",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", today.Format("2006-01-02")),
		zap.String("status", status),
	)
	return mapToResponse(*row), nil
}

func (s *service) TimeOut(ctx context.Context, req TimeOutRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx := s.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clk.Now()
	today := clock.DateOf(now)

	row, err := qtx.FindByEmployeeAndDate(ctx, req.EmployeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNoTimeIn
		}
		return AttendanceResponse{}, err
	}
	if row.TimeOut != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyTimedOut
	}

	hours, err := WorkedHours(row.TimeIn, now)
	if err != nil {
		return AttendanceResponse{}, err
	}

	// Conditional update keeps a concurrent duplicate time-out from
	// winning after both passed the read above.
	closed, err := qtx.CloseOut(ctx, row.ID.String(), now, hours)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !closed {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyTimedOut
	}

	// Hourly staff accrue into the running accumulator consumed by the
	// next payroll run.
	emp, err := s.employeeRepo.FindByID(ctx, req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !emp.FixedSalary() {
		delta := int64(math.Round(float64(emp.BasicSalary) / 8 * hours))
		if delta > 0 {
			if err := s.employeeRepo.WithTx(tx).AddToTotalSalary(ctx, req.EmployeeID, delta); err != nil {
				return AttendanceResponse{}, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return AttendanceResponse{}, err
	}

	row.TimeOut = &now
	row.Hours = hours

	s.logger.Info("time-out recorded",
		zap.String("employee_id", req.EmployeeID),
		zap.Float64("hours", hours),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetRange(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}
	rows, err := s.repo.FindRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

// WorkedHours derives the hour count for a closed record. A time-out that
// lands before its time-in is assumed to have crossed midnight and is
// rolled forward a day; if the duration still is not positive the record
// is bad data and rejected.
func WorkedHours(timeIn, timeOut time.Time) (float64, error) {
	d := timeOut.Sub(timeIn)
	if d < 0 {
		d = timeOut.Add(24 * time.Hour).Sub(timeIn)
	}
	if d <= 0 {
		return 0, attendanceerrors.ErrNonPositiveDuration
	}
	return math.Round(d.Hours()*100) / 100, nil
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		Date:       a.Date.Format("2006-01-02"),
		TimeIn:     a.TimeIn.Format(time.RFC3339),
		Hours:      a.Hours,
		Status:     a.Status,
	}
	if a.TimeOut != nil {
		v := a.TimeOut.Format(time.RFC3339)
		resp.TimeOut = &v
	}
	return resp
}
