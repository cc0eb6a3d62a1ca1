package user

import (
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" db:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" db:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null;default:''" db:"password_hash"`
	FirstName    string    `gorm:"column:first_name;not null;default:''" db:"first_name"`
	LastName     string    `gorm:"column:last_name;not null;default:''" db:"last_name"`
	Role         string    `gorm:"column:role;not null;index" db:"role"`
	SchoolID     *string   `gorm:"column:school_id;type:varchar(36);index" db:"school_id"`
	Status       string    `gorm:"column:status;not null;default:pending" db:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" db:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ToIdentity strips credentials and returns the request principal.
func (u *User) ToIdentity() *identity.User {
	if u == nil {
		return nil
	}
	return &identity.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      identity.Role(u.Role),
		SchoolID:  u.SchoolID,
		Status:    identity.Status(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
