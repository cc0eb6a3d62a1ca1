package postgres

import (
	"context"
	"fmt"

	"github.com/amit1797/Eduadmin-sub000/internal/audit"
	auditDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

// Repository only appends and reads audit_logs.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) audit.Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, entry *audit.Entry) error {
	row := entry.ToDataModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	entry.ID = row.ID
	entry.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]audit.Entry, error) {
	var rows []auditDatamodel.Log
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("created_at DESC, id").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	out := make([]audit.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, *audit.FromDataModel(&rows[i]))
	}
	return out, nil
}
