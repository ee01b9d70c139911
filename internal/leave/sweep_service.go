package leave

import (
	"context"
	"fmt"
	"time"

	"go-payday/internal/employee"
	"go-payday/internal/notification"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepService walks the leave ledger on a timer and keeps employee
// day-off flags in step with approved requests. Every sweep is safe to
// re-run within the same day: one-shot effects ride on conditional
// updates (MarkStarted, Transition).
//
//go:generate mockgen -source=sweep_service.go -destination=mock/sweep_service_mock.go -package=mock
type SweepService interface {
	MarkStartedDayOffs(ctx context.Context, today time.Time) error
	CompleteElapsed(ctx context.Context, today time.Time) error
	AutoRejectStale(ctx context.Context, today time.Time) error
}

type sweepService struct {
	db           *gorm.DB
	repo         Repository
	employeeRepo employee.Repository
	notifier     notification.Service
	logger       *zap.Logger
}

func NewSweepService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	notifier notification.Service,
	logger ...*zap.Logger,
) SweepService {
	l := zap.L().Named("leave.sweep")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.sweep")
	}
	return &sweepService{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		notifier:     notifier,
		logger:       l,
	}
}

// MarkStartedDayOffs flags everyone whose approved leave covers today.
// The first sweep that sees a leave begin also accrues the with-pay
// amount and sends the start email.
func (s *sweepService) MarkStartedDayOffs(ctx context.Context, today time.Time) error {
	rows, err := s.repo.FindApprovedCovering(ctx, today)
	if err != nil {
		return err
	}

	for _, l := range rows {
		emp, err := s.employeeRepo.FindByID(ctx, l.EmployeeID.String())
		if err != nil {
			s.logger.Error("day-off sweep could not load employee",
				zap.String("leave_id", l.ID.String()),
				zap.String("employee_id", l.EmployeeID.String()),
				zap.Error(err),
			)
			continue
		}

		started, err := s.startLeave(ctx, l, emp)
		if err != nil {
			s.logger.Error("day-off start failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if started {
			s.notifier.SendLeaveUpdate(ctx, notification.LeaveUpdate{
				EmployeeID: l.EmployeeID,
				Name:       emp.FullName,
				Email:      emp.Email,
				Subject:    "Your day off has started",
				Body: fmt.Sprintf(
					"Dear %s,\n\nYou are off from %s to %s. Enjoy your day off!\n\nBest regards,\nYour Company",
					emp.FullName,
					l.StartDate.Format("2006-01-02"),
					l.EndDate.Format("2006-01-02"),
				),
			})
		}
	}
	return nil
}

func (s *sweepService) startLeave(ctx context.Context, l LeaveRequest, emp *employee.Employee) (bool, error) {
	tx := s.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return false, err
	}
	defer tx.Rollback()

	empTx := s.employeeRepo.WithTx(tx)
	if err := empTx.SetDayOff(ctx, l.EmployeeID.String(), true); err != nil {
		return false, err
	}

	started, err := s.repo.WithTx(tx).MarkStarted(ctx, l.ID.String(), time.Now())
	if err != nil {
		return false, err
	}

	if started && l.WithPay {
		accrual := emp.BasicSalary * int64(l.DaysRequested)
		if err := empTx.AddToTotalSalary(ctx, l.EmployeeID.String(), accrual); err != nil {
			return false, err
		}
		s.logger.Info("with-pay leave accrued",
			zap.String("employee_id", l.EmployeeID.String()),
			zap.Int64("amount", accrual),
			zap.Int("days", l.DaysRequested),
		)
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return started, nil
}

// CompleteElapsed closes approved leaves whose end date has passed: the
// employee comes back on duty and the request moves to DONE. The window
// is open-ended so a sweep outage only delays completion, never loses it.
func (s *sweepService) CompleteElapsed(ctx context.Context, today time.Time) error {
	rows, err := s.repo.FindApprovedEndedBefore(ctx, today)
	if err != nil {
		return err
	}

	for _, l := range rows {
		tx := s.db.WithContext(ctx).Begin()
		if err := tx.Error; err != nil {
			return err
		}

		moved, err := s.repo.WithTx(tx).Transition(ctx, l.ID.String(), StatusApproved, StatusDone)
		if err == nil && moved {
			err = s.employeeRepo.WithTx(tx).SetDayOff(ctx, l.EmployeeID.String(), false)
		}
		if err != nil {
			tx.Rollback()
			s.logger.Error("leave completion failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("leave completion commit failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if moved {
			s.logger.Info("leave request completed",
				zap.String("leave_id", l.ID.String()),
				zap.String("employee_id", l.EmployeeID.String()),
			)
		}
	}
	return nil
}

// AutoRejectStale rejects pending requests whose start date slipped past
// without anyone acting on them.
func (s *sweepService) AutoRejectStale(ctx context.Context, today time.Time) error {
	rows, err := s.repo.FindPendingStartedBefore(ctx, today)
	if err != nil {
		return err
	}

	for _, l := range rows {
		moved, err := s.repo.Transition(ctx, l.ID.String(), StatusPending, StatusRejected)
		if err != nil {
			s.logger.Error("stale leave auto-reject failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !moved {
			continue
		}

		s.logger.Info("stale leave request auto-rejected",
			zap.String("leave_id", l.ID.String()),
			zap.String("employee_id", l.EmployeeID.String()),
		)

		emp, err := s.employeeRepo.FindByID(ctx, l.EmployeeID.String())
		if err != nil {
			s.logger.Error("auto-reject notification skipped, employee lookup failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.notifier.SendLeaveUpdate(ctx, notification.LeaveUpdate{
			EmployeeID: l.EmployeeID,
			Name:       emp.FullName,
			Email:      emp.Email,
			Subject:    "Leave Request Rejected",
			Body: fmt.Sprintf(
				"Dear %s,\n\nYour leave request for the dates %s to %s has been automatically rejected.\n\nBest regards,\nYour Company",
				emp.FullName,
				l.StartDate.Format("2006-01-02"),
				l.EndDate.Format("2006-01-02"),
			),
		})
	}
	return nil
}
