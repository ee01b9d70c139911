package events

import "time"

const PayrollProcessedTopic = "hr.payroll.processed.v1"

// PayrollProcessedEvent is queued through the outbox when a ledger row is
// written. The notifier turns it into the employee's payslip email and SMS.
type PayrollProcessedEvent struct {
	EventType    string    `json:"event_type"`
	PayrollID    string    `json:"payroll_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	PeriodStart  string    `json:"period_start"`
	PeriodEnd    string    `json:"period_end"`
	HoursWorked  float64   `json:"hours_worked"`
	TotalPay     int64     `json:"total_pay"`
	OvertimePay  int64     `json:"overtime_pay"`
	AbsenceCount int       `json:"absence_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}
