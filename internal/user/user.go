package user

import (
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal"
	userDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/user"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
)

var (
	ErrEmailTaken     = internal.NewConflictError("Email is already registered", internal.ErrCodeConflict)
	ErrNotFound       = internal.NewNotFoundError("User not found", internal.ErrCodeNotFound)
	ErrSchoolRequired = internal.NewValidationFieldError("schoolId", "schoolId is required for this role", internal.ErrCodeSchoolIDRequired)
	ErrNotPending     = internal.NewBadRequestError("User has already been activated", internal.ErrCodeInvalidInvite)
	ErrRoleNotAllowed = internal.NewValidationFieldError("role", "role is not an assignable role", internal.ErrCodeValidationFailed)
)

// NewPending builds an account awaiting its first password. Every role
// except super_admin is bound to a school.
func NewPending(email, firstName, lastName string, role identity.Role, schoolID *string) (*userDatamodel.User, error) {
	if !role.Valid() {
		return nil, ErrRoleNotAllowed
	}
	if role != identity.RoleSuperAdmin && (schoolID == nil || *schoolID == "") {
		return nil, ErrSchoolRequired
	}
	if role == identity.RoleSuperAdmin {
		schoolID = nil
	}
	return &userDatamodel.User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Role:      string(role),
		SchoolID:  schoolID,
		Status:    string(identity.StatusPending),
	}, nil
}

func FromDataModel(u *userDatamodel.User) *identity.User {
	return u.ToIdentity()
}

func FromDataModels(rows []userDatamodel.User) []*identity.User {
	out := make([]*identity.User, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToIdentity())
	}
	return out
}
