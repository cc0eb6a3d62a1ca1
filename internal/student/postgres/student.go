package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	studentDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/student"
	"github.com/amit1797/Eduadmin-sub000/internal/student"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueViolation recognises the (school_id, admission_number) index
// rejecting a write. gorm translates it when TranslateError is on; the
// driver errors are checked for connections opened without it.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) student.Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s *studentDatamodel.Student) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return student.ErrAdmissionTaken
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, schoolID, id string) (*studentDatamodel.Student, error) {
	var s studentDatamodel.Student
	err := r.db.WithContext(ctx).Where("school_id = ? AND id = ?", schoolID, id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) List(ctx context.Context, schoolID string, limit, offset int) ([]studentDatamodel.Student, error) {
	var rows []studentDatamodel.Student
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("last_name, first_name, id").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, s *studentDatamodel.Student) error {
	err := r.db.WithContext(ctx).
		Model(&studentDatamodel.Student{}).
		Where("school_id = ? AND id = ?", s.SchoolID, s.ID).
		Updates(map[string]interface{}{
			"admission_number": s.AdmissionNumber,
			"first_name":       s.FirstName,
			"last_name":        s.LastName,
			"class_id":         s.ClassID,
			"date_of_birth":    s.DateOfBirth,
			"guardian_email":   s.GuardianEmail,
			"status":           s.Status,
		}).Error
	if err != nil {
		if isUniqueViolation(err) {
			return student.ErrAdmissionTaken
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, schoolID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("school_id = ? AND id = ?", schoolID, id).Delete(&studentDatamodel.Student{})
	if res.Error != nil {
		return false, fmt.Errorf("delete student: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AdmissionTaken counts soft-deleted rows too, matching the unique index.
func (r *Repository) AdmissionTaken(ctx context.Context, schoolID, admissionNumber, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Unscoped().
		Model(&studentDatamodel.Student{}).
		Where("school_id = ? AND admission_number = ?", schoolID, admissionNumber)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check admission number: %w", err)
	}
	return count > 0, nil
}
