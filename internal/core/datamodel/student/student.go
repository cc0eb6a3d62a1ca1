package student

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID              string         `gorm:"primaryKey;type:varchar(36)"`
	SchoolID        string         `gorm:"column:school_id;type:varchar(36);not null;uniqueIndex:idx_students_school_admission"`
	AdmissionNumber string         `gorm:"column:admission_number;not null;uniqueIndex:idx_students_school_admission"`
	FirstName       string         `gorm:"column:first_name;not null"`
	LastName        string         `gorm:"column:last_name;not null"`
	ClassID         *string        `gorm:"column:class_id;type:varchar(36)"`
	DateOfBirth     *time.Time     `gorm:"column:date_of_birth"`
	GuardianEmail   string         `gorm:"column:guardian_email"`
	Status          string         `gorm:"column:status;not null;default:active"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Student) TableName() string { return "students" }

func (s *Student) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
