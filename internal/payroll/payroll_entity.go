package payroll

import (
	"time"

	"github.com/google/uuid"
)

// PayrollRecord is one immutable ledger row per employee per run day. The
// unique index on (employee_id, run_date) is the idempotency guard: a
// second run the same day hits the constraint instead of racing an
// existence check.
type PayrollRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_employee_run,unique"`
	RunDate      time.Time `gorm:"type:date;not null;index:idx_payroll_employee_run,unique"`
	PeriodStart  time.Time `gorm:"type:date;not null"`
	PeriodEnd    time.Time `gorm:"type:date;not null;index"`
	HoursWorked  float64   `gorm:"type:numeric(6,2);not null;default:0"`
	RegularPay   int64     `gorm:"type:bigint;not null;default:0"`
	OvertimePay  int64     `gorm:"type:bigint;not null;default:0"`
	Deduction    int64     `gorm:"type:bigint;not null;default:0"`
	TotalPay     int64     `gorm:"type:bigint;not null;default:0"`
	AbsenceCount int       `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

func (PayrollRecord) TableName() string {
	return "payroll_records"
}
