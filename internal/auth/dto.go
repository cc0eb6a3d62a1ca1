package auth

import (
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login
// requests. SchoolCode is required for everyone except super admins.
type LoginDTO struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	SchoolCode string `json:"schoolCode"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type SetPasswordDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (d *LoginDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.SchoolCode = strings.TrimSpace(d.SchoolCode)
}

func (d LoginDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

func (d RefreshTokenDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

func (d SetPasswordDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}
