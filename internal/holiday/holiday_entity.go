package holiday

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceAPI    = "API"
	SourceManual = "MANUAL"
)

// Holiday is a non-working calendar date. MANUAL rows come from the admin
// endpoints; API rows are persisted copies of external calendar lookups.
type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_holiday_date"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Source    string    `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	CreatedAt time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}
