package auth

import (
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		Issuer:        "eduadmin-test",
	})
}

func testUser(role identity.Role, schoolID string) *identity.User {
	u := &identity.User{ID: "user-1", Email: "teacher@school.test", Role: role, Status: identity.StatusActive}
	if schoolID != "" {
		u.SchoolID = &schoolID
	}
	return u
}

var _ = ginkgo.Describe("TokenService", func() {
	var tokens *TokenService

	ginkgo.BeforeEach(func() {
		tokens = newTestTokenService()
	})

	ginkgo.Describe("IssueAccessAndRefresh", func() {
		ginkgo.It("should issue two distinct tokens with the access TTL in seconds", func() {
			pair, err := tokens.IssueAccessAndRefresh(testUser(identity.RoleTeacher, "school-a"))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(pair.AccessToken).ToNot(gomega.Equal(pair.RefreshToken))
			gomega.Expect(pair.ExpiresIn).To(gomega.Equal(int64(900)))
		})

		ginkgo.It("should carry the identity claims", func() {
			pair, _ := tokens.IssueAccessAndRefresh(testUser(identity.RoleTeacher, "school-a"))

			claims, err := tokens.Verify(pair.AccessToken, TokenTypeAccess)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("user-1"))
			gomega.Expect(claims.Email).To(gomega.Equal("teacher@school.test"))
			gomega.Expect(claims.Role).To(gomega.Equal(identity.RoleTeacher))
			gomega.Expect(*claims.SchoolID).To(gomega.Equal("school-a"))
			gomega.Expect(claims.Type).To(gomega.Equal(TokenTypeAccess))
			gomega.Expect(claims.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(claims.Issuer).To(gomega.Equal("eduadmin-test"))
		})
	})

	ginkgo.Describe("type isolation", func() {
		ginkgo.It("should reject a refresh token where an access token is expected", func() {
			pair, _ := tokens.IssueAccessAndRefresh(testUser(identity.RoleTeacher, "school-a"))

			_, err := tokens.Verify(pair.RefreshToken, TokenTypeAccess)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject an access token where a refresh token is expected", func() {
			pair, _ := tokens.IssueAccessAndRefresh(testUser(identity.RoleTeacher, "school-a"))

			_, err := tokens.Verify(pair.AccessToken, TokenTypeRefresh)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject an invite token where an access token is expected even though they share a secret", func() {
			invite, _, err := tokens.IssueInvite("user-1", "new@school.test", identity.RoleTeacher, nil, 0)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokens.Verify(invite, TokenTypeAccess)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))

			claims, err := tokens.Verify(invite, TokenTypeInvite)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Email).To(gomega.Equal("new@school.test"))
		})
	})

	ginkgo.Describe("IssueInvite", func() {
		ginkgo.It("should default to the 48h invite TTL", func() {
			now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			tokens.now = func() time.Time { return now }

			_, expiresAt, err := tokens.IssueInvite("user-1", "a@b.c", identity.RoleTeacher, nil, 0)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(expiresAt).To(gomega.Equal(now.Add(48 * time.Hour)))
		})

		ginkgo.It("should honour an explicit TTL", func() {
			now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			tokens.now = func() time.Time { return now }

			_, expiresAt, _ := tokens.IssueInvite("user-1", "a@b.c", identity.RoleTeacher, nil, time.Hour)
			gomega.Expect(expiresAt).To(gomega.Equal(now.Add(time.Hour)))
		})
	})

	ginkgo.Describe("expiry", func() {
		ginkgo.It("should report an expired token of the right type as expired", func() {
			// Given a token issued 16 minutes ago
			tokens.now = func() time.Time { return time.Now().Add(-16 * time.Minute) }
			pair, _ := tokens.IssueAccessAndRefresh(testUser(identity.RoleTeacher, "school-a"))
			tokens.now = time.Now

			// When
			_, err := tokens.Verify(pair.AccessToken, TokenTypeAccess)

			// Then
			gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
		})

		ginkgo.It("should report an expired token of the wrong type as invalid", func() {
			tokens.now = func() time.Time { return time.Now().Add(-49 * time.Hour) }
			invite, _, _ := tokens.IssueInvite("user-1", "a@b.c", identity.RoleTeacher, nil, 0)
			tokens.now = time.Now

			_, err := tokens.Verify(invite, TokenTypeAccess)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})
	})

	ginkgo.Describe("tampering", func() {
		ginkgo.It("should reject garbage", func() {
			_, err := tokens.Verify("not-a-jwt", TokenTypeAccess)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			other := NewTokenService(TokenConfig{AccessSecret: "another-secret-0123456789abcdefgh", RefreshSecret: testRefreshSecret, Issuer: "eduadmin-test"})
			pair, _ := other.IssueAccessAndRefresh(testUser(identity.RoleTeacher, "school-a"))

			_, err := tokens.Verify(pair.AccessToken, TokenTypeAccess)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject an expired token with a bad signature as invalid", func() {
			other := NewTokenService(TokenConfig{AccessSecret: "another-secret-0123456789abcdefgh", RefreshSecret: testRefreshSecret, Issuer: "eduadmin-test"})
			other.now = func() time.Time { return time.Now().Add(-time.Hour) }
			pair, _ := other.IssueAccessAndRefresh(testUser(identity.RoleTeacher, "school-a"))

			_, err := tokens.Verify(pair.AccessToken, TokenTypeAccess)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject algorithms other than HS256", func() {
			claims := &Claims{
				UserID: "user-1",
				Role:   identity.RoleTeacher,
				Type:   TokenTypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "eduadmin-test",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testAccessSecret))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokens.Verify(signed, TokenTypeAccess)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject tokens missing the id or carrying an unknown role", func() {
			for _, c := range []*Claims{
				{Role: identity.RoleTeacher, Type: TokenTypeAccess},
				{UserID: "user-1", Role: "janitor", Type: TokenTypeAccess},
			} {
				c.Issuer = "eduadmin-test"
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
				signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testAccessSecret))

				_, err := tokens.Verify(signed, TokenTypeAccess)
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
			}
		})
	})
})
