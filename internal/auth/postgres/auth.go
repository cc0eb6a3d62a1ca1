package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal/auth"
	userDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/user"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"gorm.io/gorm"
)

// Repository is the credential store behind authentication.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.CredentialRepository {
	return &Repository{
		db: db,
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

func (r *Repository) ActivatePending(ctx context.Context, id, passwordHash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ? AND status = ?", id, string(identity.StatusPending)).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"status":        string(identity.StatusActive),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
