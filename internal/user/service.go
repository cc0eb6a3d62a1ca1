package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal"
	userDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/user"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
)

// Repository stores accounts. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]userDatamodel.User, error)
}

// InviteIssuer mints invite tokens. *auth.TokenService satisfies it.
type InviteIssuer interface {
	IssueInvite(userID, email string, role identity.Role, schoolID *string, ttl time.Duration) (string, time.Time, error)
}

type Service struct {
	repo    Repository
	invites InviteIssuer
	logger  *slog.Logger
}

func NewService(repo Repository, invites InviteIssuer, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		invites: invites,
		logger:  logger,
	}
}

// Invite creates a pending account in schoolID and returns its invite token.
// The actor may only hand out roles ranked below its own.
func (s *Service) Invite(ctx context.Context, actor *identity.User, schoolID string, dto InviteDTO) (*InviteResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, _ := identity.ParseRole(dto.Role)
	if !actor.CanAssign(role) {
		s.logger.Warn("invite above actor rank refused", "user_id", actorID(actor), "school_id", schoolID, "role", role)
		return nil, internal.ErrForbiddenRole
	}
	return s.createPending(ctx, dto.Email, dto.FirstName, dto.LastName, role, &schoolID)
}

func actorID(u *identity.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// InviteSuperAdmin creates a platform-level pending account.
func (s *Service) InviteSuperAdmin(ctx context.Context, email, firstName, lastName string) (*InviteResponse, error) {
	return s.createPending(ctx, email, firstName, lastName, identity.RoleSuperAdmin, nil)
}

func (s *Service) createPending(ctx context.Context, email, firstName, lastName string, role identity.Role, schoolID *string) (*InviteResponse, error) {
	u, err := NewPending(email, firstName, lastName, role, schoolID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, u.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	resp, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user invited", "user_id", u.ID, "role", u.Role)
	return resp, nil
}

func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// ReissueInvite mints a fresh invite for an account that is still pending.
func (s *Service) ReissueInvite(ctx context.Context, email string) (*InviteResponse, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	if identity.Status(u.Status) != identity.StatusPending {
		return nil, ErrNotPending
	}
	return s.issue(u)
}

func (s *Service) issue(u *userDatamodel.User) (*InviteResponse, error) {
	token, expiresAt, err := s.invites.IssueInvite(u.ID, u.Email, identity.Role(u.Role), u.SchoolID, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue invite", err)
	}
	return &InviteResponse{
		User:        FromDataModel(u),
		InviteToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]*identity.User, error) {
	rows, err := s.repo.ListBySchool(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return FromDataModels(rows), nil
}

// GetByID returns a user of schoolID. Users of other schools read as missing.
func (s *Service) GetByID(ctx context.Context, schoolID, id string) (*identity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil || u.SchoolID == nil || *u.SchoolID != schoolID {
		return nil, ErrNotFound
	}
	return FromDataModel(u), nil
}
