package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/observability"
	"github.com/amit1797/Eduadmin-sub000/internal/transport"
	"github.com/amit1797/Eduadmin-sub000/pkg/logger"
)

const (
	guardTenant      = "tenant"
	guardEntitlement = "entitlement"
	guardPermission  = "permission"
	guardRole        = "role"
)

// Authorizer turns guard chains into chi middleware. It expects the
// authentication middleware to have put the user in the request context.
type Authorizer struct {
	*transport.BaseHandler
	entitlements EntitlementStore
	permissions  PermissionStore
	metrics      *observability.Metrics
}

func NewAuthorizer(entitlements EntitlementStore, permissions PermissionStore, metrics *observability.Metrics, lg *slog.Logger) *Authorizer {
	return &Authorizer{
		BaseHandler:  transport.NewBaseHandler(lg),
		entitlements: entitlements,
		permissions:  permissions,
		metrics:      metrics,
	}
}

func (a *Authorizer) fullChain() Guard {
	return Chain(
		a.observe(guardTenant, TenantGuard()),
		a.observe(guardEntitlement, EntitlementGuard(a.entitlements)),
		a.observe(guardPermission, PermissionGuard(a.permissions)),
	)
}

// RequireTenant only enforces tenant isolation.
func (a *Authorizer) RequireTenant() func(http.Handler) http.Handler {
	return a.middleware(a.observe(guardTenant, TenantGuard()), "", "")
}

// Require enforces tenant isolation, the module entitlement and the
// permission, in that order.
func (a *Authorizer) Require(module Module, permission Permission) func(http.Handler) http.Handler {
	return a.middleware(a.fullChain(), module, permission)
}

// RequireRole gates a route to the listed roles, without tenant checks.
func (a *Authorizer) RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	return a.middleware(a.observe(guardRole, RoleGuard(roles...)), "", "")
}

func (a *Authorizer) middleware(guard Guard, module Module, permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			user, ok := internal.UserFromContext(ctx)
			if !ok {
				a.WriteAppError(w, internal.ErrUserInactiveOrMissing)
				return
			}

			req := &Request{
				User:       user,
				SchoolID:   ResolveSchoolID(r),
				Module:     module,
				Permission: permission,
			}

			if err := guard(ctx, req); err != nil {
				appErr := internal.AsAppError(err)
				logger.From(ctx).Warn("access denied",
					"user_id", user.ID,
					"role", user.Role,
					"school_id", req.SchoolID,
					"module", module,
					"permission", permission,
					"code", appErr.Code)
				a.WriteAppError(w, appErr)
				return
			}

			if req.SchoolID != "" {
				ctx = internal.ContextWithSchoolID(ctx, req.SchoolID)
				ctx = logger.Annotate(ctx, "school_id", req.SchoolID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authorizer) observe(name string, g Guard) Guard {
	return func(ctx context.Context, req *Request) error {
		err := g(ctx, req)
		switch appErr, _ := internal.IsAppError(err); {
		case err == nil:
			a.metrics.ObserveAccessDecision(name, observability.OutcomeAllow)
		case appErr != nil && appErr.StatusCode < http.StatusInternalServerError:
			a.metrics.ObserveAccessDecision(name, observability.OutcomeDeny)
		default:
			a.metrics.ObserveAccessDecision(name, observability.OutcomeError)
		}
		return err
	}
}
