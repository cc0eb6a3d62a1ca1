package user

import (
	"strings"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/core/common/validation"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
)

// InviteDTO creates a pending account inside a school.
type InviteDTO struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Role      string `json:"role" validate:"required,assignable_role"`
}

func (d *InviteDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
}

func (d InviteDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

// InviteResponse hands the invite token back to the inviter, who forwards
// it out of band.
type InviteResponse struct {
	User        *identity.User `json:"user"`
	InviteToken string         `json:"inviteToken"`
	ExpiresAt   time.Time      `json:"expiresAt"`
}

type ListResponse struct {
	Users  []*identity.User `json:"users"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
