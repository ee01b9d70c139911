package consumer

import (
	"context"
	"encoding/json"

	"go-payday/internal/events"
	"go-payday/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumePayrollProcessed drains payroll events into the notification
// dispatcher. Delivery is best-effort, so every decoded message gets
// committed; the audit table is the place to look for failed sends.
func ConsumePayrollProcessed(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_processed")
	log.Info("payroll processed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll processed consumer stopped")
				return
			}
			log.Error("fetch payroll processed message failed", zap.Error(err))
			continue
		}

		var event events.PayrollProcessedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payroll_processed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		notifier.SendPayslip(ctx, event)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll processed message failed", zap.Error(err))
			continue
		}

		log.Info("payslip dispatched",
			zap.String("payroll_id", event.PayrollID),
			zap.String("employee_id", event.EmployeeID),
		)
	}
}
