package notification

import (
	"context"
	"fmt"

	"go-payday/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeaveUpdate is what the leave module hands over when a request changes
// state and the employee should hear about it.
type LeaveUpdate struct {
	EmployeeID uuid.UUID
	Name       string
	Email      string
	Subject    string
	Body       string
}

// Service dispatches employee-facing messages. Every method is
// best-effort: failures are logged and audited, never returned, because
// no caller should roll back business state over a dead SMTP relay.
//
//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	SendPayslip(ctx context.Context, ev events.PayrollProcessedEvent)
	SendLeaveUpdate(ctx context.Context, upd LeaveUpdate)
}

type service struct {
	repo   Repository
	email  EmailSender
	sms    SMSSender
	logger *zap.Logger
}

func NewService(repo Repository, email EmailSender, sms SMSSender, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, email: email, sms: sms, logger: l}
}

func (s *service) SendPayslip(ctx context.Context, ev events.PayrollProcessedEvent) {
	employeeID, err := uuid.Parse(ev.EmployeeID)
	if err != nil {
		s.logger.Error("payslip event carries a bad employee id",
			zap.String("employee_id", ev.EmployeeID),
			zap.Error(err),
		)
		return
	}

	body := fmt.Sprintf(
		"Hello, %s. Your salary for the payroll period %s to %s has been processed. Please check your account. PHP%s working hours %.2f. Overtime pay PHP%s, absences %d.",
		ev.EmployeeName,
		ev.PeriodStart,
		ev.PeriodEnd,
		formatCentavos(ev.TotalPay),
		ev.HoursWorked,
		formatCentavos(ev.OvertimePay),
		ev.AbsenceCount,
	)
	subject := "Your payslip is ready"

	if ev.Email != "" {
		s.deliverEmail(ctx, employeeID, ev.Email, subject, body)
	}
	if ev.PhoneNumber != "" {
		s.deliverSMS(ctx, employeeID, ev.PhoneNumber, body)
	}
}

func (s *service) SendLeaveUpdate(ctx context.Context, upd LeaveUpdate) {
	if upd.Email == "" {
		s.logger.Warn("leave update has no recipient email",
			zap.String("employee_id", upd.EmployeeID.String()),
		)
		return
	}
	s.deliverEmail(ctx, upd.EmployeeID, upd.Email, upd.Subject, upd.Body)
}

func (s *service) deliverEmail(ctx context.Context, employeeID uuid.UUID, to, subject, body string) {
	status := StatusSent
	if err := s.email.Send(to, subject, body); err != nil {
		status = StatusFailed
		s.logger.Error("email delivery failed",
			zap.String("employee_id", employeeID.String()),
			zap.String("recipient", to),
			zap.Error(err),
		)
	}
	s.audit(ctx, Notification{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Channel:    ChannelEmail,
		Recipient:  to,
		Subject:    subject,
		Body:       body,
		Status:     status,
	})
}

func (s *service) deliverSMS(ctx context.Context, employeeID uuid.UUID, to, text string) {
	status := StatusSent
	if err := s.sms.Send(ctx, to, text); err != nil {
		status = StatusFailed
		s.logger.Error("sms delivery failed",
			zap.String("employee_id", employeeID.String()),
			zap.String("recipient", to),
			zap.Error(err),
		)
	}
	s.audit(ctx, Notification{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Channel:    ChannelSMS,
		Recipient:  to,
		Body:       text,
		Status:     status,
	})
}

func (s *service) audit(ctx context.Context, n Notification) {
	if err := s.repo.Create(ctx, &n); err != nil {
		s.logger.Error("notification audit write failed",
			zap.String("employee_id", n.EmployeeID.String()),
			zap.String("channel", n.Channel),
			zap.Error(err),
		)
	}
}

func formatCentavos(v int64) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
