package access

import (
	"time"

	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

// Event is one immutable audit record of a login attempt. There is no update
// path: rows are appended by the authentication flow and read by the audit
// query.
type Event struct {
	ID         int64              `gorm:"primaryKey" json:"id"`
	UserID     int64              `gorm:"column:user_id;not null" json:"user_id"`
	User       userDatamodel.User `gorm:"foreignKey:UserID" json:"-"`
	OccurredAt time.Time          `gorm:"column:occurred_at;not null" json:"occurred_at"`
	IP         string             `gorm:"column:ip" json:"ip"`
	UserAgent  string             `gorm:"column:user_agent" json:"user_agent"`
	Failed     bool               `gorm:"column:failed" json:"failed"`
}

func (Event) TableName() string {
	return "access_events"
}
