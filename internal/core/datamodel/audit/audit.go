package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Log struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `gorm:"column:user_id;type:varchar(36);not null;index"`
	Action     string    `gorm:"column:action;not null"`
	Resource   string    `gorm:"column:resource;not null"`
	ResourceID *string   `gorm:"column:resource_id"`
	OldValues  *string   `gorm:"column:old_values;type:text"`
	NewValues  *string   `gorm:"column:new_values;type:text"`
	SchoolID   *string   `gorm:"column:school_id;type:varchar(36);index"`
	IPAddress  *string   `gorm:"column:ip_address"`
	UserAgent  *string   `gorm:"column:user_agent"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (Log) TableName() string { return "audit_logs" }

func (l *Log) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
