package school

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type School struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"column:name;not null"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Status    string    `gorm:"column:status;not null;default:active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (School) TableName() string { return "schools" }

func (s *School) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Module is the per-school entitlement flag for one feature area.
type Module struct {
	SchoolID  string    `gorm:"primaryKey;column:school_id;type:varchar(36)"`
	Module    string    `gorm:"primaryKey;column:module;type:varchar(64)"`
	Enabled   bool      `gorm:"column:enabled;not null;default:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Module) TableName() string { return "school_modules" }
