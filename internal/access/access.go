// Package access implements tenant isolation, module entitlements and the
// role permission matrix as a chain of guards.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
)

type Module string

const (
	ModuleStudentManagement    Module = "student_management"
	ModuleTeacherManagement    Module = "teacher_management"
	ModuleClassManagement      Module = "class_management"
	ModuleAttendanceManagement Module = "attendance_management"
	ModuleSubjectManagement    Module = "subject_management"
	ModuleEventManagement      Module = "event_management"
	ModuleUserManagement       Module = "user_management"
	ModuleAuditManagement      Module = "audit_management"
)

var modules = []Module{
	ModuleStudentManagement,
	ModuleTeacherManagement,
	ModuleClassManagement,
	ModuleAttendanceManagement,
	ModuleSubjectManagement,
	ModuleEventManagement,
	ModuleUserManagement,
	ModuleAuditManagement,
}

type Permission string

const (
	PermissionCreate Permission = "create"
	PermissionRead   Permission = "read"
	PermissionUpdate Permission = "update"
	PermissionDelete Permission = "delete"
)

var permissions = []Permission{PermissionCreate, PermissionRead, PermissionUpdate, PermissionDelete}

var (
	ErrUnknownModule     = errors.New("unknown module")
	ErrUnknownPermission = errors.New("unknown permission")
)

func Modules() []Module {
	out := make([]Module, len(modules))
	copy(out, modules)
	return out
}

func Permissions() []Permission {
	out := make([]Permission, len(permissions))
	copy(out, permissions)
	return out
}

func ParseModule(s string) (Module, error) {
	m := Module(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, s)
	}
	return m, nil
}

func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

func (m Module) Valid() bool {
	for _, known := range modules {
		if m == known {
			return true
		}
	}
	return false
}

func (p Permission) Valid() bool {
	for _, known := range permissions {
		if p == known {
			return true
		}
	}
	return false
}

// EntitlementStore answers whether a school has a module switched on.
// A missing record means disabled.
type EntitlementStore interface {
	IsEnabled(ctx context.Context, schoolID string, module Module) (bool, error)
}

// PermissionStore answers whether a role holds a permission on a module.
type PermissionStore interface {
	Allows(ctx context.Context, role identity.Role, module Module, permission Permission) (bool, error)
}
