package access

import (
	"context"
	"fmt"
	"sort"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
)

// Grant is one (role, module, permission) triple.
type Grant struct {
	Role       identity.Role
	Module     Module
	Permission Permission
}

// Matrix is an immutable in-memory permission table.
type Matrix struct {
	grants map[Grant]struct{}
}

func NewMatrix(grants ...Grant) *Matrix {
	m := &Matrix{grants: make(map[Grant]struct{}, len(grants))}
	for _, g := range grants {
		m.grants[g] = struct{}{}
	}
	return m
}

func (m *Matrix) Allows(_ context.Context, role identity.Role, module Module, permission Permission) (bool, error) {
	_, ok := m.grants[Grant{Role: role, Module: module, Permission: permission}]
	return ok, nil
}

// Grants returns every triple in a stable order.
func (m *Matrix) Grants() []Grant {
	out := make([]Grant, 0, len(m.grants))
	for g := range m.grants {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Permission < out[j].Permission
	})
	return out
}

func (m *Matrix) Len() int { return len(m.grants) }

// MatrixStore persists the role permission table.
type MatrixStore interface {
	Replace(ctx context.Context, grants []Grant) error
	List(ctx context.Context) ([]Grant, error)
}

// Seed overwrites the stored table with m and reads it back, returning the
// number of stored grants per role.
func Seed(ctx context.Context, store MatrixStore, m *Matrix) (map[identity.Role]int, error) {
	grants := m.Grants()
	if err := store.Replace(ctx, grants); err != nil {
		return nil, err
	}
	stored, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) != len(grants) {
		return nil, fmt.Errorf("seeded %d role permissions but read back %d", len(grants), len(stored))
	}
	perRole := make(map[identity.Role]int)
	for _, g := range stored {
		perRole[g.Role]++
	}
	return perRole, nil
}

func grant(role identity.Role, module Module, perms ...Permission) []Grant {
	out := make([]Grant, 0, len(perms))
	for _, p := range perms {
		out = append(out, Grant{Role: role, Module: module, Permission: p})
	}
	return out
}

var (
	crud     = []Permission{PermissionCreate, PermissionRead, PermissionUpdate, PermissionDelete}
	cru      = []Permission{PermissionCreate, PermissionRead, PermissionUpdate}
	readOnly = []Permission{PermissionRead}
)

// DefaultMatrix is the canonical platform-wide permission table. The seed
// command writes it to role_permissions. super_admin has no rows because
// every guard lets it through.
var DefaultMatrix = buildDefaultMatrix()

func buildDefaultMatrix() *Matrix {
	var grants []Grant

	for _, m := range modules {
		grants = append(grants, grant(identity.RoleSchoolAdmin, m, crud...)...)
	}

	for _, m := range []Module{
		ModuleStudentManagement,
		ModuleTeacherManagement,
		ModuleClassManagement,
		ModuleAttendanceManagement,
		ModuleSubjectManagement,
		ModuleEventManagement,
	} {
		grants = append(grants, grant(identity.RoleSubSchoolAdmin, m, crud...)...)
	}
	grants = append(grants, grant(identity.RoleSubSchoolAdmin, ModuleUserManagement, cru...)...)
	grants = append(grants, grant(identity.RoleSubSchoolAdmin, ModuleAuditManagement, readOnly...)...)

	grants = append(grants, grant(identity.RoleTeacher, ModuleStudentManagement, readOnly...)...)
	grants = append(grants, grant(identity.RoleTeacher, ModuleTeacherManagement, readOnly...)...)
	grants = append(grants, grant(identity.RoleTeacher, ModuleClassManagement, readOnly...)...)
	grants = append(grants, grant(identity.RoleTeacher, ModuleSubjectManagement, readOnly...)...)
	grants = append(grants, grant(identity.RoleTeacher, ModuleEventManagement, readOnly...)...)
	grants = append(grants, grant(identity.RoleTeacher, ModuleAttendanceManagement, cru...)...)

	for _, m := range []Module{ModuleClassManagement, ModuleSubjectManagement, ModuleAttendanceManagement, ModuleEventManagement} {
		grants = append(grants, grant(identity.RoleStudent, m, readOnly...)...)
	}

	for _, m := range []Module{ModuleStudentManagement, ModuleAttendanceManagement, ModuleEventManagement} {
		grants = append(grants, grant(identity.RoleParent, m, readOnly...)...)
	}

	grants = append(grants, grant(identity.RoleAccountant, ModuleStudentManagement, readOnly...)...)
	grants = append(grants, grant(identity.RoleAccountant, ModuleEventManagement, readOnly...)...)

	grants = append(grants, grant(identity.RoleLibrarian, ModuleStudentManagement, readOnly...)...)

	return NewMatrix(grants...)
}
