package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal"
	schoolDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/school"
	userDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/user"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"golang.org/x/crypto/bcrypt"
)

// CredentialRepository is the slice of user storage authentication needs.
// Lookups return (nil, nil) when nothing matches.
type CredentialRepository interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	// ActivatePending sets the password and flips status pending -> active
	// in one conditional update. It reports whether a row changed.
	ActivatePending(ctx context.Context, id, passwordHash string) (bool, error)
}

type SchoolLookup interface {
	GetByID(ctx context.Context, id string) (*schoolDatamodel.School, error)
}

// Service is the main auth service with dependencies
type Service struct {
	users      CredentialRepository
	schools    SchoolLookup
	tokens     TokenGenerator
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates a new auth service
func NewService(users CredentialRepository, schools SchoolLookup, tokens TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		schools:    schools,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil || u.PasswordHash == "" {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if identity.Status(u.Status) != identity.StatusActive {
		return nil, internal.ErrAccountNotActive
	}

	if identity.Role(u.Role) != identity.RoleSuperAdmin {
		if err := s.checkSchool(ctx, u, dto.SchoolCode); err != nil {
			return nil, err
		}
	}

	s.logger.Info("user authenticated", "user_id", u.ID, "role", u.Role)
	return s.issue(u.ToIdentity())
}

// checkSchool requires the code of the user's own, active school.
func (s *Service) checkSchool(ctx context.Context, u *userDatamodel.User, code string) error {
	if code == "" {
		return internal.NewValidationFieldError("schoolCode", "schoolCode is required", internal.ErrCodeValidationFailed)
	}
	if u.SchoolID == nil {
		return internal.ErrInvalidCredentials
	}

	school, err := s.schools.GetByID(ctx, *u.SchoolID)
	if err != nil {
		return internal.NewInternalError("failed to load school", err)
	}
	if school == nil || !strings.EqualFold(school.Code, code) {
		return internal.ErrInvalidCredentials
	}
	if school.Status != "active" {
		return internal.ErrAccountNotActive
	}
	return nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if err := (RefreshTokenDTO{RefreshToken: refreshToken}).Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, tokenAppError(err)
	}

	u, err := s.GetActiveUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.issue(u)
}

// SetPassword consumes an invite token, activates the pending account and
// signs the user in. Replays after the first success fail.
func (s *Service) SetPassword(ctx context.Context, dto SetPasswordDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokens.Verify(dto.Token, TokenTypeInvite)
	if err != nil {
		return nil, internal.ErrInvalidInvite
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	activated, err := s.users.ActivatePending(ctx, claims.UserID, hash)
	if err != nil {
		return nil, internal.NewInternalError("failed to activate account", err)
	}
	if !activated {
		return nil, internal.ErrInviteAlreadyUsed
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserInactiveOrMissing
	}

	s.logger.Info("account activated", "user_id", u.ID)
	return s.issue(u.ToIdentity())
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.Verify(tokenString, TokenTypeAccess)
}

// GetActiveUser re-reads the account so deactivation takes effect on the
// next request.
func (s *Service) GetActiveUser(ctx context.Context, userID string) (*identity.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserInactiveOrMissing
	}
	principal := u.ToIdentity()
	if !principal.IsActive() {
		return nil, internal.ErrUserInactiveOrMissing
	}
	return principal, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issue(u *identity.User) (*AuthResponse, error) {
	pair, err := s.tokens.IssueAccessAndRefresh(u)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue tokens", err)
	}
	return &AuthResponse{TokenPair: pair, User: u}, nil
}

func tokenAppError(err error) *internal.AppError {
	if errors.Is(err, ErrTokenExpired) {
		return internal.ErrTokenExpired
	}
	return internal.ErrInvalidToken
}
