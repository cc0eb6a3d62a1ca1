package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/amit1797/Eduadmin-sub000/internal/access"
	schoolDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/school"
	"github.com/amit1797/Eduadmin-sub000/internal/school"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ school.Repository = (*Repository)(nil)

func (r *Repository) GetByID(ctx context.Context, id string) (*schoolDatamodel.School, error) {
	var s schoolDatamodel.School
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*schoolDatamodel.School, error) {
	var s schoolDatamodel.School
	if err := r.db.WithContext(ctx).Where("code = ?", school.NormalizeCode(code)).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateWithModules(ctx context.Context, s *schoolDatamodel.School, modules []access.Module) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return fmt.Errorf("create school: %w", err)
		}
		if len(modules) == 0 {
			return nil
		}
		rows := make([]schoolDatamodel.Module, 0, len(modules))
		for _, m := range modules {
			rows = append(rows, schoolDatamodel.Module{SchoolID: s.ID, Module: string(m), Enabled: true})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("create school modules: %w", err)
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]schoolDatamodel.School, error) {
	var rows []schoolDatamodel.School
	if err := r.db.WithContext(ctx).Order("name, id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return rows, nil
}
