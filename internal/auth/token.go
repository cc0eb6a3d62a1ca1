package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultInviteTTL  = 48 * time.Hour
)

// TokenConfig carries the signing material. Access and invite tokens share
// AccessSecret; refresh tokens use RefreshSecret. A zero TTL takes the
// default.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	InviteTTL     time.Duration
	Issuer        string
}

// TokenService signs and verifies HS256 tokens.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	inviteTTL     time.Duration
	issuer        string
	now           func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	s := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		inviteTTL:     cfg.InviteTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
	if s.accessTTL == 0 {
		s.accessTTL = DefaultAccessTTL
	}
	if s.refreshTTL == 0 {
		s.refreshTTL = DefaultRefreshTTL
	}
	if s.inviteTTL == 0 {
		s.inviteTTL = DefaultInviteTTL
	}
	return s
}

func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccessAndRefresh mints a fresh pair for an authenticated user.
func (s *TokenService) IssueAccessAndRefresh(u *identity.User) (TokenPair, error) {
	access, _, err := s.sign(u.ID, u.Email, u.Role, u.SchoolID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(u.ID, u.Email, u.Role, u.SchoolID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

// IssueInvite mints a single-purpose token used to set the first password.
// ttl <= 0 uses the configured invite TTL.
func (s *TokenService) IssueInvite(userID, email string, role identity.Role, schoolID *string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.inviteTTL
	}
	return s.sign(userID, email, role, schoolID, TokenTypeInvite, ttl)
}

func (s *TokenService) sign(userID, email string, role identity.Role, schoolID *string, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		UserID:   userID,
		Email:    email,
		Role:     role,
		SchoolID: schoolID,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretFor(typ))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return tokenString, expiresAt, nil
}

func (s *TokenService) secretFor(typ TokenType) []byte {
	if typ == TokenTypeRefresh {
		return s.refreshSecret
	}
	return s.accessSecret
}

// Verify checks signature, expiry and token type. An expired token of the
// right type yields ErrTokenExpired; every other failure is ErrInvalidToken.
func (s *TokenService) Verify(tokenString string, expected TokenType) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secretFor(expected), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) && claims.Type == expected {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.Type != expected || claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
