package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/user"
	"github.com/amit1797/Eduadmin-sub000/internal/user"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const listBySchoolQuery = `
SELECT id, email, password_hash, first_name, last_name, role, school_id, status, created_at, updated_at
FROM users
WHERE school_id = ?
ORDER BY created_at DESC, id
LIMIT ? OFFSET ?
`

// Repository writes through gorm and serves list reads with sqlx.
type Repository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewRepository(db *gorm.DB, reader *sqlx.DB) user.Repository {
	return &Repository{
		db:     db,
		reader: reader,
	}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]userDatamodel.User, error) {
	users := []userDatamodel.User{}
	if err := r.reader.SelectContext(ctx, &users, r.reader.Rebind(listBySchoolQuery), schoolID, limit, offset); err != nil {
		return nil, fmt.Errorf("list users by school: %w", err)
	}
	return users, nil
}
