package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payday/internal/employee"
	employeeerrors "go-payday/internal/employee/errors"
	leaveerrors "go-payday/internal/leave/errors"
	"go-payday/internal/notification"
	"go-payday/internal/shared/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)

	// Process, Approve and Reject drive the state machine
	// PENDING -> PROCESSING -> APPROVED | REJECTED. Approval deducts the
	// requested days from the employee's leave credit.
	Process(ctx context.Context, id string) (LeaveResponse, error)
	Approve(ctx context.Context, id string) (LeaveResponse, error)
	Reject(ctx context.Context, id string) (LeaveResponse, error)
}

type service struct {
	db           *gorm.DB
	repo         Repository
	employeeRepo employee.Repository
	notifier     notification.Service
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	notifier notification.Service,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		notifier:     notifier,
		clk:          clk,
		logger:       l,
	}
}

func (s *service) Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error) {
	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}
	if end.Before(start) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	today := clock.DateOf(s.clk.Now())
	if start.Format("2006-01-02") < today.Format("2006-01-02") {
		return LeaveResponse{}, leaveerrors.ErrStartDateInPast
	}

	tx := s.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := s.employeeRepo.WithTx(tx).FindByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return LeaveResponse{}, err
	}

	outstanding, err := qtx.HasOutstanding(ctx, req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if outstanding {
		return LeaveResponse{}, leaveerrors.ErrOutstandingLeave
	}

	l := &LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    uuid.MustParse(req.EmployeeID),
		LeaveType:     req.LeaveType,
		StartDate:     start,
		EndDate:       end,
		DaysRequested: inclusiveDays(start, end),
		WithPay:       req.WithPay,
		Status:        StatusPending,
	}
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request created",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("days", l.DaysRequested),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) Process(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	moved, err := s.repo.Transition(ctx, id, StatusPending, StatusProcessing)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !moved {
		return LeaveResponse{}, leaveerrors.ErrInvalidTransition
	}

	l.Status = StatusProcessing
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	emp, err := s.employeeRepo.FindByID(ctx, l.EmployeeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return LeaveResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	moved, err := qtx.Transition(ctx, id, StatusProcessing, StatusApproved)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !moved {
		return LeaveResponse{}, leaveerrors.ErrInvalidTransition
	}

	deducted, err := s.employeeRepo.WithTx(tx).DeductLeaveCredit(ctx, l.EmployeeID.String(), l.DaysRequested)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !deducted {
		return LeaveResponse{}, employeeerrors.ErrInsufficientLeaveCredit
	}

	if err := tx.Commit().Error; err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request approved",
		zap.String("leave_id", id),
		zap.String("employee_id", l.EmployeeID.String()),
		zap.Int("days_deducted", l.DaysRequested),
	)

	s.notifier.SendLeaveUpdate(ctx, notification.LeaveUpdate{
		EmployeeID: l.EmployeeID,
		Name:       emp.FullName,
		Email:      emp.Email,
		Subject:    "Leave Request Approved",
		Body: fmt.Sprintf(
			"Dear %s,\n\nYour leave request for %s to %s has been approved.\n\nBest regards,\nYour Company",
			emp.FullName,
			l.StartDate.Format("2006-01-02"),
			l.EndDate.Format("2006-01-02"),
		),
	})

	l.Status = StatusApproved
	return mapToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	moved, err := s.repo.Transition(ctx, id, StatusProcessing, StatusRejected)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !moved {
		return LeaveResponse{}, leaveerrors.ErrInvalidTransition
	}

	if emp, err := s.employeeRepo.FindByID(ctx, l.EmployeeID.String()); err == nil {
		s.notifier.SendLeaveUpdate(ctx, notification.LeaveUpdate{
			EmployeeID: l.EmployeeID,
			Name:       emp.FullName,
			Email:      emp.Email,
			Subject:    "Leave Request Rejected",
			Body: fmt.Sprintf(
				"Dear %s,\n\nYour leave request for %s to %s has been rejected.\n\nBest regards,\nYour Company",
				emp.FullName,
				l.StartDate.Format("2006-01-02"),
				l.EndDate.Format("2006-01-02"),
			),
		})
	}

	l.Status = StatusRejected
	return mapToResponse(*l), nil
}

func (s *service) findByID(ctx context.Context, id string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return l, nil
}

func inclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
