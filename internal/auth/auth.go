package auth

import (
	"context"
	"errors"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeInvite  TokenType = "invite"
)

// Claims is the JWT payload. UserID serialises as "id"; the registered
// "jti" claim keeps its own field.
type Claims struct {
	UserID   string        `json:"id"`
	Email    string        `json:"email"`
	Role     identity.Role `json:"role"`
	SchoolID *string       `json:"schoolId,omitempty"`
	Type     TokenType     `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AuthResponse is returned by login, refresh and set-password.
type AuthResponse struct {
	TokenPair
	User *identity.User `json:"user"`
}

// TokenGenerator issues and verifies the three token kinds.
type TokenGenerator interface {
	IssueAccessAndRefresh(u *identity.User) (TokenPair, error)
	IssueInvite(userID, email string, role identity.Role, schoolID *string, ttl time.Duration) (string, time.Time, error)
	Verify(tokenString string, expected TokenType) (*Claims, error)
}

// AuthService performs authentication-related business logic.
type AuthService interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*AuthResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthResponse, error)
	SetPassword(ctx context.Context, dto SetPasswordDTO) (*AuthResponse, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetActiveUser(ctx context.Context, userID string) (*identity.User, error)
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
