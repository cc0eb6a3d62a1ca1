package access

import "time"

// RolePermission is one row of the role x module x permission matrix.
type RolePermission struct {
	Role       string    `gorm:"primaryKey;column:role;type:varchar(32)"`
	Module     string    `gorm:"primaryKey;column:module;type:varchar(64)"`
	Permission string    `gorm:"primaryKey;column:permission;type:varchar(16)"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RolePermission) TableName() string { return "role_permissions" }
