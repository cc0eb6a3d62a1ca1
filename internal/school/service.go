package school

import (
	"context"
	"log/slog"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	schoolDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/school"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/user"
)

// Repository stores schools. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*schoolDatamodel.School, error)
	GetByCode(ctx context.Context, code string) (*schoolDatamodel.School, error)
	// CreateWithModules inserts the school and its enabled modules atomically.
	CreateWithModules(ctx context.Context, s *schoolDatamodel.School, modules []access.Module) error
	List(ctx context.Context, limit, offset int) ([]schoolDatamodel.School, error)
}

type EntitlementRepository interface {
	ListBySchool(ctx context.Context, schoolID string) (map[access.Module]bool, error)
	Set(ctx context.Context, schoolID string, module access.Module, enabled bool) error
}

// EntitlementCache receives the committed flag after a toggle.
type EntitlementCache interface {
	Refresh(ctx context.Context, schoolID string, module access.Module, enabled bool) error
}

type AdminInviter interface {
	Invite(ctx context.Context, actor *identity.User, schoolID string, dto user.InviteDTO) (*user.InviteResponse, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type Service struct {
	repo         Repository
	entitlements EntitlementRepository
	cache        EntitlementCache
	users        AdminInviter
	logger       *slog.Logger
}

func NewService(repo Repository, entitlements EntitlementRepository, cache EntitlementCache, users AdminInviter, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		entitlements: entitlements,
		cache:        cache,
		users:        users,
		logger:       logger,
	}
}

// Onboard creates a school with its enabled modules and invites its first
// school_admin on behalf of the super admin in ctx. Conflicts are checked
// before anything is written.
func (s *Service) Onboard(ctx context.Context, dto OnboardDTO) (*OnboardResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	actor, _ := internal.UserFromContext(ctx)
	if !actor.CanAssign(identity.RoleSchoolAdmin) {
		return nil, internal.ErrForbiddenRole
	}

	existing, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		return nil, internal.NewInternalError("failed to check school code", err)
	}
	if existing != nil {
		return nil, ErrCodeTaken
	}
	taken, err := s.users.EmailTaken(ctx, dto.Admin.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check admin email", err)
	}
	if taken {
		return nil, user.ErrEmailTaken
	}

	modules := make([]access.Module, 0, len(dto.Modules))
	seen := make(map[access.Module]bool, len(dto.Modules))
	for _, m := range dto.Modules {
		mod := access.Module(m)
		if !seen[mod] {
			seen[mod] = true
			modules = append(modules, mod)
		}
	}

	row := &schoolDatamodel.School{Name: dto.Name, Code: dto.Code, Status: string(StatusActive)}
	if err := s.repo.CreateWithModules(ctx, row, modules); err != nil {
		return nil, internal.NewInternalError("failed to create school", err)
	}

	admin, err := s.users.Invite(ctx, actor, row.ID, user.InviteDTO{
		Email:     dto.Admin.Email,
		FirstName: dto.Admin.FirstName,
		LastName:  dto.Admin.LastName,
		Role:      string(identity.RoleSchoolAdmin),
	})
	if err != nil {
		s.logger.Error("school created without admin", "school_id", row.ID, "error", err)
		return nil, err
	}

	s.logger.Info("school onboarded", "school_id", row.ID, "code", row.Code, "modules", len(modules))
	return &OnboardResponse{
		School:  FromDataModel(row),
		Modules: ModuleList(seen),
		Admin:   admin,
	}, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*School, error) {
	rows, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list schools", err)
	}
	out := make([]*School, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*School, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load school", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Modules(ctx context.Context, schoolID string) ([]ModuleStatus, error) {
	if _, err := s.Get(ctx, schoolID); err != nil {
		return nil, err
	}
	flags, err := s.entitlements.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list modules", err)
	}
	return ModuleList(flags), nil
}

// SetModule toggles one entitlement and writes the new flag to the cache.
func (s *Service) SetModule(ctx context.Context, schoolID, module string, dto SetModuleDTO) (*ModuleStatus, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	mod, err := access.ParseModule(module)
	if err != nil {
		return nil, internal.NewValidationFieldError("module", "module is not a known module", internal.ErrCodeValidationFailed)
	}
	if _, err := s.Get(ctx, schoolID); err != nil {
		return nil, err
	}

	if err := s.entitlements.Set(ctx, schoolID, mod, *dto.Enabled); err != nil {
		return nil, internal.NewInternalError("failed to update module", err)
	}
	if s.cache != nil {
		if err := s.cache.Refresh(ctx, schoolID, mod, *dto.Enabled); err != nil {
			s.logger.Warn("entitlement cache refresh failed", "school_id", schoolID, "module", mod, "error", err)
		}
	}

	s.logger.Info("module entitlement changed", "school_id", schoolID, "module", mod, "enabled", *dto.Enabled)
	return &ModuleStatus{Module: mod, Enabled: *dto.Enabled}, nil
}
