package access

import (
	"context"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
)

// Request is the input every guard inspects.
type Request struct {
	User       *identity.User
	SchoolID   string
	Module     Module
	Permission Permission
}

// Guard returns nil to let the request through or an *internal.AppError
// describing the denial.
type Guard func(ctx context.Context, req *Request) error

// Chain runs guards in order and stops at the first error.
func Chain(guards ...Guard) Guard {
	return func(ctx context.Context, req *Request) error {
		for _, g := range guards {
			if err := g(ctx, req); err != nil {
				return err
			}
		}
		return nil
	}
}

// TenantGuard confines a user to the school they belong to.
func TenantGuard() Guard {
	return func(_ context.Context, req *Request) error {
		if req.User == nil {
			return internal.ErrUserInactiveOrMissing
		}
		if req.User.IsSuperAdmin() {
			return nil
		}
		if req.SchoolID == "" {
			return internal.ErrSchoolIDRequired
		}
		if !req.User.BelongsTo(req.SchoolID) {
			return internal.ErrCrossTenantAccess
		}
		return nil
	}
}

// EntitlementGuard rejects requests to modules the school has not enabled.
func EntitlementGuard(store EntitlementStore) Guard {
	return func(ctx context.Context, req *Request) error {
		if req.User == nil {
			return internal.ErrUserInactiveOrMissing
		}
		if req.User.IsSuperAdmin() {
			return nil
		}
		if req.SchoolID == "" {
			return internal.ErrSchoolIDRequired
		}
		enabled, err := store.IsEnabled(ctx, req.SchoolID, req.Module)
		if err != nil {
			return internal.NewInternalError("failed to check module entitlement", err)
		}
		if !enabled {
			return internal.ErrModuleNotEnabled(string(req.Module))
		}
		return nil
	}
}

// PermissionGuard checks the role matrix for (role, module, permission).
func PermissionGuard(store PermissionStore) Guard {
	return func(ctx context.Context, req *Request) error {
		if req.User == nil {
			return internal.ErrUserInactiveOrMissing
		}
		if req.User.IsSuperAdmin() {
			return nil
		}
		allowed, err := store.Allows(ctx, req.User.Role, req.Module, req.Permission)
		if err != nil {
			return internal.NewInternalError("failed to check permission", err)
		}
		if !allowed {
			return internal.ErrPermissionDenied(string(req.Permission), string(req.Module))
		}
		return nil
	}
}

// RoleGuard lets through only the listed roles.
func RoleGuard(roles ...identity.Role) Guard {
	return func(_ context.Context, req *Request) error {
		if req.User == nil {
			return internal.ErrUserInactiveOrMissing
		}
		if !req.User.HasRole(roles...) {
			return internal.ErrForbiddenRole
		}
		return nil
	}
}
