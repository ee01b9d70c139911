package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusApproved   = "APPROVED"
	StatusRejected   = "REJECTED"
	StatusDone       = "DONE"
)

// OutstandingStatuses are the states that block a new request for the
// same employee.
var OutstandingStatuses = []string{StatusPending, StatusProcessing, StatusApproved}

// LeaveRequest covers the inclusive range [StartDate, EndDate].
// StartedAt flips exactly once, when the day-off sweep first sees the
// range begin; the one-shot guards the with-pay accrual and the start
// email against the hourly sweep re-running.
type LeaveRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	LeaveType     string     `gorm:"type:varchar(50);not null"`
	StartDate     time.Time  `gorm:"type:date;not null"`
	EndDate       time.Time  `gorm:"type:date;not null"`
	DaysRequested int        `gorm:"not null"`
	WithPay       bool       `gorm:"not null;default:false"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	StartedAt     *time.Time `gorm:"type:timestamptz"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Covers reports whether date falls inside the request's range.
func (l LeaveRequest) Covers(date time.Time) bool {
	d := date.Format("2006-01-02")
	return d >= l.StartDate.Format("2006-01-02") && d <= l.EndDate.Format("2006-01-02")
}
