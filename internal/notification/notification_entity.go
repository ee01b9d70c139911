package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"

	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// Notification is the delivery audit trail. One row per attempt, whether
// it went out or not.
type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Channel    string    `gorm:"type:varchar(10);not null"`
	Recipient  string    `gorm:"type:varchar(255);not null"`
	Subject    string    `gorm:"type:varchar(255)"`
	Body       string    `gorm:"type:text;not null"`
	Status     string    `gorm:"type:varchar(10);not null"`
	CreatedAt  time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
