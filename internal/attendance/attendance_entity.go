package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPresent = "PRESENT"
	StatusLate    = "LATE"
)

// Attendance is one clock record per employee per calendar day. TimeOut
// stays NULL until the employee clocks out; Hours is derived then.
type Attendance struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID      `gorm:"type:uuid;not null;index:idx_attendance_employee_date,unique"`
	Date       time.Time      `gorm:"type:date;not null;index:idx_attendance_employee_date,unique"`
	TimeIn     time.Time      `gorm:"type:timestamptz;not null"`
	TimeOut    *time.Time     `gorm:"type:timestamptz"`
	Hours      float64        `gorm:"type:numeric(5,2);not null;default:0"`
	Status     string         `gorm:"type:varchar(20);not null;default:'PRESENT'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Attendance) TableName() string {
	return "attendances"
}
