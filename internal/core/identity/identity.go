// Package identity holds the authenticated principal shared by every layer.
package identity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleSchoolAdmin    Role = "school_admin"
	RoleSubSchoolAdmin Role = "sub_school_admin"
	RoleTeacher        Role = "teacher"
	RoleStudent        Role = "student"
	RoleParent         Role = "parent"
	RoleAccountant     Role = "accountant"
	RoleLibrarian      Role = "librarian"
)

var roles = []Role{
	RoleSuperAdmin,
	RoleSchoolAdmin,
	RoleSubSchoolAdmin,
	RoleTeacher,
	RoleStudent,
	RoleParent,
	RoleAccountant,
	RoleLibrarian,
}

func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// rank orders roles by authority; a lower number outranks a higher one.
// Staff, students and parents share the bottom rank.
func (r Role) rank() int {
	switch r {
	case RoleSuperAdmin:
		return 0
	case RoleSchoolAdmin:
		return 1
	case RoleSubSchoolAdmin:
		return 2
	default:
		return 3
	}
}

// Outranks reports whether r sits strictly above other.
func (r Role) Outranks(other Role) bool {
	return r.Valid() && other.Valid() && r.rank() < other.rank()
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// User is the principal attached to a request once its access token has
// been verified and the account re-read from storage.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	SchoolID  *string   `json:"schoolId,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}

// CanAssign reports whether the user may hand out target to another
// account. Only roles strictly below the user's own are assignable.
func (u *User) CanAssign(target Role) bool {
	return u != nil && u.Role.Outranks(target)
}

// BelongsTo reports whether the user is bound to the given school.
func (u *User) BelongsTo(schoolID string) bool {
	return u != nil && u.SchoolID != nil && *u.SchoolID == schoolID
}

func (u *User) HasRole(allowed ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range allowed {
		if u.Role == r {
			return true
		}
	}
	return false
}
