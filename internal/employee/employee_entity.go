package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClassificationRankAndFile = "RANK_AND_FILE"
	ClassificationManagerial  = "MANAGERIAL"
	ClassificationSupervisor  = "SUPERVISOR"

	StatusActive  = "ACTIVE"
	StatusOffDuty = "OFF_DUTY"
)

type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName    string    `gorm:"type:varchar(120);not null"`
	Email       string    `gorm:"type:varchar(120);not null;uniqueIndex"`
	PhoneNumber string    `gorm:"type:varchar(30)"`
	Department  string    `gorm:"type:varchar(60)"`
	Position    string    `gorm:"type:varchar(60)"`

	// RANK_AND_FILE staff are paid hourly off BasicSalary/8;
	// MANAGERIAL and SUPERVISOR get BasicSalary flat per period.
	Classification string `gorm:"type:varchar(20);not null;default:'RANK_AND_FILE';index"`

	// Amounts in centavos. BasicSalary is the daily basic for hourly staff
	// and the per-period amount for fixed-salary staff. TotalSalary is the
	// running accumulator consumed and zeroed by each payroll run.
	BasicSalary int64 `gorm:"type:bigint;not null;default:0"`
	TotalSalary int64 `gorm:"type:bigint;not null;default:0"`

	LeaveCredit int    `gorm:"type:int;not null;default:0"`
	DayOff      bool   `gorm:"not null;default:false"`
	Status      string `gorm:"type:varchar(20);not null;default:'ACTIVE'"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}

// FixedSalary reports whether the employee is paid a flat per-period amount.
func (e Employee) FixedSalary() bool {
	return e.Classification == ClassificationManagerial ||
		e.Classification == ClassificationSupervisor
}
