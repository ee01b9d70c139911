package app

import (
	"go-payday/internal/attendance"
	"go-payday/internal/employee"
	"go-payday/internal/holiday"
	"go-payday/internal/leave"
	"go-payday/internal/notification"
	"go-payday/internal/payroll"

	"gorm.io/gorm"
)

const outboxDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id VARCHAR(64),
	aggregate_type VARCHAR(50) NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type VARCHAR(100) NOT NULL,
	topic VARCHAR(200) NOT NULL,
	payload JSONB NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message VARCHAR(500),
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&employee.Employee{},
		&attendance.Attendance{},
		&leave.LeaveRequest{},
		&payroll.PayrollRecord{},
		&holiday.Holiday{},
		&notification.Notification{},
	); err != nil {
		return err
	}
	// The outbox table is raw SQL land, not a gorm entity.
	return gormDB.Exec(outboxDDL).Error
}
