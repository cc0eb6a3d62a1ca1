package access_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockEntitlements struct {
	enabled    map[string]bool
	shouldFail bool
	calls      int
}

func (m *mockEntitlements) IsEnabled(_ context.Context, schoolID string, module access.Module) (bool, error) {
	m.calls++
	if m.shouldFail {
		return false, errors.New("database unavailable")
	}
	return m.enabled[schoolID+"/"+string(module)], nil
}

type mockPermissions struct {
	shouldFail bool
	calls      int
}

func (m *mockPermissions) Allows(ctx context.Context, role identity.Role, module access.Module, permission access.Permission) (bool, error) {
	m.calls++
	if m.shouldFail {
		return false, errors.New("database unavailable")
	}
	return access.DefaultMatrix.Allows(ctx, role, module, permission)
}

func strPtr(s string) *string { return &s }

func userFor(role identity.Role, schoolID string) *identity.User {
	u := &identity.User{ID: "user-" + string(role), Role: role, Status: identity.StatusActive}
	if schoolID != "" {
		u.SchoolID = strPtr(schoolID)
	}
	return u
}

func expectAppError(err error, status int, code internal.ErrorCode) {
	appErr, ok := internal.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected AppError, got %v", err)
	ExpectWithOffset(1, appErr.StatusCode).To(Equal(status))
	ExpectWithOffset(1, appErr.Code).To(Equal(code))
}

var _ = Describe("Guards", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("TenantGuard", func() {
		guard := access.TenantGuard()

		It("always lets super_admin through, even without a school id", func() {
			Expect(guard(ctx, &access.Request{User: userFor(identity.RoleSuperAdmin, "")})).To(Succeed())
			Expect(guard(ctx, &access.Request{User: userFor(identity.RoleSuperAdmin, ""), SchoolID: "school-b"})).To(Succeed())
		})

		It("requires a school id for tenant users", func() {
			err := guard(ctx, &access.Request{User: userFor(identity.RoleTeacher, "school-a")})
			expectAppError(err, http.StatusBadRequest, internal.ErrCodeSchoolIDRequired)
			Expect(err.Error()).To(Equal("School ID is required"))
		})

		It("allows a user inside their own school", func() {
			Expect(guard(ctx, &access.Request{User: userFor(identity.RoleTeacher, "school-a"), SchoolID: "school-a"})).To(Succeed())
		})

		for _, role := range identity.Roles() {
			if role == identity.RoleSuperAdmin {
				continue
			}
			role := role
			It("rejects "+string(role)+" on a foreign school", func() {
				err := guard(ctx, &access.Request{User: userFor(role, "school-a"), SchoolID: "school-b"})
				expectAppError(err, http.StatusForbidden, internal.ErrCodeCrossTenantAccess)
				Expect(err.Error()).To(Equal("Access denied to this school"))
			})
		}

		It("rejects a tenant user with no school binding", func() {
			err := guard(ctx, &access.Request{User: userFor(identity.RoleTeacher, ""), SchoolID: "school-a"})
			expectAppError(err, http.StatusForbidden, internal.ErrCodeCrossTenantAccess)
		})

		It("rejects a request with no user", func() {
			err := guard(ctx, &access.Request{SchoolID: "school-a"})
			expectAppError(err, http.StatusUnauthorized, internal.ErrCodeUserInactiveOrMissing)
		})
	})

	Describe("EntitlementGuard", func() {
		var store *mockEntitlements

		BeforeEach(func() {
			store = &mockEntitlements{enabled: map[string]bool{"school-a/student_management": true}}
		})

		It("allows an enabled module", func() {
			req := &access.Request{User: userFor(identity.RoleTeacher, "school-a"), SchoolID: "school-a", Module: access.ModuleStudentManagement}
			Expect(access.EntitlementGuard(store)(ctx, req)).To(Succeed())
		})

		It("rejects a disabled or missing module with the module name in the message", func() {
			req := &access.Request{User: userFor(identity.RoleTeacher, "school-a"), SchoolID: "school-a", Module: access.ModuleAttendanceManagement}
			err := access.EntitlementGuard(store)(ctx, req)
			expectAppError(err, http.StatusForbidden, internal.ErrCodeModuleNotEnabled)
			Expect(err.Error()).To(Equal("Module attendance_management is not enabled for this school"))
		})

		It("skips the lookup for super_admin", func() {
			req := &access.Request{User: userFor(identity.RoleSuperAdmin, ""), SchoolID: "school-z", Module: access.ModuleAttendanceManagement}
			Expect(access.EntitlementGuard(store)(ctx, req)).To(Succeed())
			Expect(store.calls).To(BeZero())
		})

		It("maps store failures to an internal error", func() {
			store.shouldFail = true
			req := &access.Request{User: userFor(identity.RoleTeacher, "school-a"), SchoolID: "school-a", Module: access.ModuleStudentManagement}
			err := access.EntitlementGuard(store)(ctx, req)
			expectAppError(err, http.StatusInternalServerError, internal.ErrCodeInternal)
		})
	})

	Describe("PermissionGuard", func() {
		var store *mockPermissions

		BeforeEach(func() {
			store = &mockPermissions{}
		})

		It("allows a granted triple", func() {
			req := &access.Request{User: userFor(identity.RoleTeacher, "school-a"), Module: access.ModuleStudentManagement, Permission: access.PermissionRead}
			Expect(access.PermissionGuard(store)(ctx, req)).To(Succeed())
		})

		It("rejects a missing triple naming permission and module", func() {
			req := &access.Request{User: userFor(identity.RoleTeacher, "school-a"), Module: access.ModuleStudentManagement, Permission: access.PermissionDelete}
			err := access.PermissionGuard(store)(ctx, req)
			expectAppError(err, http.StatusForbidden, internal.ErrCodePermissionDenied)
			Expect(err.Error()).To(Equal("Missing permission delete on module student_management"))
		})

		It("skips the lookup for super_admin", func() {
			req := &access.Request{User: userFor(identity.RoleSuperAdmin, ""), Module: access.ModuleAuditManagement, Permission: access.PermissionDelete}
			Expect(access.PermissionGuard(store)(ctx, req)).To(Succeed())
			Expect(store.calls).To(BeZero())
		})

		It("maps store failures to an internal error", func() {
			store.shouldFail = true
			req := &access.Request{User: userFor(identity.RoleTeacher, "school-a"), Module: access.ModuleStudentManagement, Permission: access.PermissionRead}
			expectAppError(access.PermissionGuard(store)(ctx, req), http.StatusInternalServerError, internal.ErrCodeInternal)
		})
	})

	Describe("RoleGuard", func() {
		It("allows listed roles and rejects others", func() {
			guard := access.RoleGuard(identity.RoleSuperAdmin)
			Expect(guard(ctx, &access.Request{User: userFor(identity.RoleSuperAdmin, "")})).To(Succeed())

			err := guard(ctx, &access.Request{User: userFor(identity.RoleSchoolAdmin, "school-a")})
			expectAppError(err, http.StatusForbidden, internal.ErrCodeForbiddenRole)
			Expect(err.Error()).To(Equal("Insufficient role"))
		})
	})

	Describe("Chain", func() {
		It("stops at the first failing guard", func() {
			var ran []string
			record := func(name string, fail bool) access.Guard {
				return func(context.Context, *access.Request) error {
					ran = append(ran, name)
					if fail {
						return internal.ErrCrossTenantAccess
					}
					return nil
				}
			}

			err := access.Chain(record("tenant", false), record("entitlement", true), record("permission", false))(ctx, &access.Request{})
			Expect(err).To(MatchError(internal.ErrCrossTenantAccess))
			Expect(ran).To(Equal([]string{"tenant", "entitlement"}))
		})

		It("passes when every guard passes", func() {
			Expect(access.Chain()(ctx, &access.Request{})).To(Succeed())
		})

		It("never consults the entitlement store on a cross-tenant request", func() {
			store := &mockEntitlements{}
			chain := access.Chain(access.TenantGuard(), access.EntitlementGuard(store))
			req := &access.Request{User: userFor(identity.RoleSchoolAdmin, "school-a"), SchoolID: "school-b", Module: access.ModuleStudentManagement}

			expectAppError(chain(ctx, req), http.StatusForbidden, internal.ErrCodeCrossTenantAccess)
			Expect(store.calls).To(BeZero())
		})
	})
})
