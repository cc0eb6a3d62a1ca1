package access_test

import (
	"context"

	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Matrix", func() {
	ctx := context.Background()

	It("allows exactly the declared grants through the permission guard", func() {
		declared := make(map[access.Grant]bool)
		for _, g := range access.DefaultMatrix.Grants() {
			declared[g] = true
		}

		guard := access.PermissionGuard(access.DefaultMatrix)
		for _, role := range identity.Roles() {
			if role == identity.RoleSuperAdmin {
				continue
			}
			for _, module := range access.Modules() {
				for _, perm := range access.Permissions() {
					req := &access.Request{
						User:       &identity.User{ID: "u", Role: role},
						Module:     module,
						Permission: perm,
					}
					err := guard(ctx, req)
					if declared[access.Grant{Role: role, Module: module, Permission: perm}] {
						Expect(err).NotTo(HaveOccurred(), "%s %s %s should be allowed", role, module, perm)
					} else {
						Expect(err).To(HaveOccurred(), "%s %s %s should be denied", role, module, perm)
					}
				}
			}
		}
	})

	It("gives school_admin full CRUD on every module", func() {
		for _, module := range access.Modules() {
			for _, perm := range access.Permissions() {
				ok, err := access.DefaultMatrix.Allows(ctx, identity.RoleSchoolAdmin, module, perm)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
			}
		}
	})

	It("has no rows for super_admin and only known values", func() {
		for _, g := range access.DefaultMatrix.Grants() {
			Expect(g.Role).NotTo(Equal(identity.RoleSuperAdmin))
			Expect(g.Role.Valid()).To(BeTrue())
			Expect(g.Module.Valid()).To(BeTrue())
			Expect(g.Permission.Valid()).To(BeTrue())
		}
	})

	It("lets teachers read but not create students", func() {
		ok, _ := access.DefaultMatrix.Allows(ctx, identity.RoleTeacher, access.ModuleStudentManagement, access.PermissionRead)
		Expect(ok).To(BeTrue())
		ok, _ = access.DefaultMatrix.Allows(ctx, identity.RoleTeacher, access.ModuleStudentManagement, access.PermissionCreate)
		Expect(ok).To(BeFalse())
	})

	It("returns grants in a stable order", func() {
		Expect(access.DefaultMatrix.Grants()).To(Equal(access.DefaultMatrix.Grants()))
		Expect(access.DefaultMatrix.Grants()).To(HaveLen(access.DefaultMatrix.Len()))
	})

	Describe("parsing", func() {
		It("accepts known modules and permissions case-insensitively", func() {
			m, err := access.ParseModule(" Student_Management ")
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(access.ModuleStudentManagement))

			p, err := access.ParsePermission("READ")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(access.PermissionRead))
		})

		It("rejects unknown values", func() {
			_, err := access.ParseModule("finance_management")
			Expect(err).To(MatchError(access.ErrUnknownModule))

			_, err = access.ParsePermission("approve")
			Expect(err).To(MatchError(access.ErrUnknownPermission))
		})
	})
})
