package postgres

import (
	"context"
	"fmt"

	"github.com/amit1797/Eduadmin-sub000/internal/access"
	accessDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/access"
	schoolDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/school"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntitlementRepository reads and writes school_modules.
type EntitlementRepository struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

func (r *EntitlementRepository) IsEnabled(ctx context.Context, schoolID string, module access.Module) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schoolDatamodel.Module{}).
		Where("school_id = ? AND module = ? AND enabled = ?", schoolID, string(module), true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("query entitlement: %w", err)
	}
	return count > 0, nil
}

// ListBySchool returns the stored flags of a school keyed by module.
func (r *EntitlementRepository) ListBySchool(ctx context.Context, schoolID string) (map[access.Module]bool, error) {
	var rows []schoolDatamodel.Module
	if err := r.db.WithContext(ctx).Where("school_id = ?", schoolID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}
	out := make(map[access.Module]bool, len(rows))
	for _, row := range rows {
		out[access.Module(row.Module)] = row.Enabled
	}
	return out, nil
}

// Set upserts the flag for one school module.
func (r *EntitlementRepository) Set(ctx context.Context, schoolID string, module access.Module, enabled bool) error {
	row := schoolDatamodel.Module{SchoolID: schoolID, Module: string(module), Enabled: enabled}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "school_id"}, {Name: "module"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set entitlement: %w", err)
	}
	return nil
}

// RolePermissionRepository reads and writes role_permissions.
type RolePermissionRepository struct {
	db *gorm.DB
}

func NewRolePermissionRepository(db *gorm.DB) *RolePermissionRepository {
	return &RolePermissionRepository{db: db}
}

func (r *RolePermissionRepository) Allows(ctx context.Context, role identity.Role, module access.Module, permission access.Permission) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&accessDatamodel.RolePermission{}).
		Where("role = ? AND module = ? AND permission = ?", string(role), string(module), string(permission)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("query role permission: %w", err)
	}
	return count > 0, nil
}

// Replace swaps the whole table for the given grants in one transaction.
func (r *RolePermissionRepository) Replace(ctx context.Context, grants []access.Grant) error {
	rows := make([]accessDatamodel.RolePermission, 0, len(grants))
	for _, g := range grants {
		rows = append(rows, accessDatamodel.RolePermission{
			Role:       string(g.Role),
			Module:     string(g.Module),
			Permission: string(g.Permission),
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&accessDatamodel.RolePermission{}).Error; err != nil {
			return fmt.Errorf("clear role permissions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("insert role permissions: %w", err)
		}
		return nil
	})
}

func (r *RolePermissionRepository) List(ctx context.Context) ([]access.Grant, error) {
	var rows []accessDatamodel.RolePermission
	if err := r.db.WithContext(ctx).Order("role, module, permission").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	out := make([]access.Grant, 0, len(rows))
	for _, row := range rows {
		out = append(out, access.Grant{
			Role:       identity.Role(row.Role),
			Module:     access.Module(row.Module),
			Permission: access.Permission(row.Permission),
		})
	}
	return out, nil
}
