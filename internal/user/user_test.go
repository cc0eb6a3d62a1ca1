package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/auth"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/testutil"
	"github.com/amit1797/Eduadmin-sub000/internal/user"
	userPostgres "github.com/amit1797/Eduadmin-sub000/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

var _ = Describe("User service", func() {
	var (
		ctx     context.Context
		service *user.Service
		tokens  *auth.TokenService
	)

	schoolA := "school-a"
	schoolAdmin := &identity.User{ID: "admin-a", Role: identity.RoleSchoolAdmin, SchoolID: &schoolA, Status: identity.StatusActive}
	subAdmin := &identity.User{ID: "sub-a", Role: identity.RoleSubSchoolAdmin, SchoolID: &schoolA, Status: identity.StatusActive}

	BeforeEach(func() {
		ctx = context.Background()
		db, err := testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
		reader, err := testutil.SQLX(db)
		Expect(err).NotTo(HaveOccurred())

		tokens = auth.NewTokenService(auth.TokenConfig{
			AccessSecret:  "user-test-access-secret-0123456789",
			RefreshSecret: "user-test-refresh-secret-0123456789",
		})
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = user.NewService(userPostgres.NewRepository(db, reader), tokens, lg)
	})

	Describe("Invite", func() {
		It("creates a pending account bound to the school with a usable invite", func() {
			resp, err := service.Invite(ctx, schoolAdmin, "school-a", user.InviteDTO{
				Email:     " New.Teacher@School.test ",
				FirstName: "Ada",
				LastName:  "Lovelace",
				Role:      "teacher",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Email).To(Equal("new.teacher@school.test"))
			Expect(resp.User.Status).To(Equal(identity.StatusPending))
			Expect(*resp.User.SchoolID).To(Equal("school-a"))

			claims, err := tokens.Verify(resp.InviteToken, auth.TokenTypeInvite)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(resp.User.ID))
		})

		It("refuses to hand out super_admin", func() {
			_, err := service.Invite(ctx, schoolAdmin, "school-a", user.InviteDTO{Email: "x@school.test", FirstName: "X", LastName: "Y", Role: "super_admin"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("only hands out roles ranked below the inviter", func() {
			_, err := service.Invite(ctx, subAdmin, "school-a", user.InviteDTO{Email: "boss@school.test", FirstName: "B", LastName: "C", Role: "school_admin"})
			Expect(err).To(MatchError(internal.ErrForbiddenRole))

			_, err = service.Invite(ctx, subAdmin, "school-a", user.InviteDTO{Email: "peer@school.test", FirstName: "P", LastName: "Q", Role: "sub_school_admin"})
			Expect(err).To(MatchError(internal.ErrForbiddenRole))

			_, err = service.Invite(ctx, nil, "school-a", user.InviteDTO{Email: "anon@school.test", FirstName: "A", LastName: "N", Role: "teacher"})
			Expect(err).To(MatchError(internal.ErrForbiddenRole))

			for _, role := range []string{"teacher", "student", "parent", "accountant", "librarian"} {
				_, err = service.Invite(ctx, subAdmin, "school-a", user.InviteDTO{Email: role + "@school.test", FirstName: "S", LastName: "T", Role: role})
				Expect(err).NotTo(HaveOccurred(), role)
			}

			resp, err := service.Invite(ctx, schoolAdmin, "school-a", user.InviteDTO{Email: "deputy@school.test", FirstName: "D", LastName: "E", Role: "sub_school_admin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Role).To(Equal(identity.RoleSubSchoolAdmin))

			taken, err := service.EmailTaken(ctx, "boss@school.test")
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeFalse())
		})

		It("rejects a taken email with 409", func() {
			dto := user.InviteDTO{Email: "dup@school.test", FirstName: "A", LastName: "B", Role: "parent"}
			_, err := service.Invite(ctx, schoolAdmin, "school-a", dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Invite(ctx, schoolAdmin, "school-b", dto)
			Expect(err).To(MatchError(user.ErrEmailTaken))
		})
	})

	Describe("InviteSuperAdmin", func() {
		It("creates a platform account without a school", func() {
			resp, err := service.InviteSuperAdmin(ctx, "root@platform.test", "Root", "Admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.SchoolID).To(BeNil())
			Expect(resp.User.Role).To(Equal(identity.RoleSuperAdmin))
		})
	})

	Describe("ReissueInvite", func() {
		It("only serves pending accounts", func() {
			_, err := service.Invite(ctx, schoolAdmin, "school-a", user.InviteDTO{Email: "p@school.test", FirstName: "P", LastName: "Q", Role: "librarian"})
			Expect(err).NotTo(HaveOccurred())

			resp, err := service.ReissueInvite(ctx, "p@school.test")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.InviteToken).NotTo(BeEmpty())

			_, err = service.ReissueInvite(ctx, "ghost@school.test")
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("ListBySchool and GetByID", func() {
		It("only returns users of the requested school", func() {
			a, err := service.Invite(ctx, schoolAdmin, "school-a", user.InviteDTO{Email: "a@school.test", FirstName: "A", LastName: "A", Role: "teacher"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Invite(ctx, schoolAdmin, "school-b", user.InviteDTO{Email: "b@school.test", FirstName: "B", LastName: "B", Role: "teacher"})
			Expect(err).NotTo(HaveOccurred())

			users, err := service.ListBySchool(ctx, "school-a", 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Email).To(Equal("a@school.test"))

			_, err = service.GetByID(ctx, "school-b", a.User.ID)
			Expect(err).To(MatchError(user.ErrNotFound))

			got, err := service.GetByID(ctx, "school-a", a.User.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(a.User.ID))
		})
	})
})

var _ = Describe("NewPending", func() {
	It("requires a school for tenant roles", func() {
		_, err := user.NewPending("a@b.c", "A", "B", identity.RoleTeacher, nil)
		Expect(err).To(MatchError(user.ErrSchoolRequired))
	})

	It("drops the school for super_admin", func() {
		school := "school-a"
		u, err := user.NewPending("a@b.c", "A", "B", identity.RoleSuperAdmin, &school)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.SchoolID).To(BeNil())
	})
})

type stubService struct {
	gotActor  *identity.User
	gotSchool string
	gotDTO    user.InviteDTO
}

func (s *stubService) Invite(_ context.Context, actor *identity.User, schoolID string, dto user.InviteDTO) (*user.InviteResponse, error) {
	s.gotActor, s.gotSchool, s.gotDTO = actor, schoolID, dto
	return &user.InviteResponse{User: &identity.User{ID: "u-1", Email: dto.Email}, InviteToken: "tok"}, nil
}

func (s *stubService) ListBySchool(_ context.Context, schoolID string, limit, offset int) ([]*identity.User, error) {
	s.gotSchool = schoolID
	return []*identity.User{{ID: "u-1"}}, nil
}

func (s *stubService) GetByID(_ context.Context, schoolID, id string) (*identity.User, error) {
	return nil, user.ErrNotFound
}

var _ = Describe("User handler", func() {
	var (
		stub   *stubService
		router chi.Router
	)

	BeforeEach(func() {
		stub = &stubService{}
		h := user.NewHandler(stub)
		router = chi.NewRouter()
		router.Post("/schools/{schoolId}/users/invite", h.Invite)
		router.Get("/schools/{schoolId}/users", h.List)
		router.Get("/schools/{schoolId}/users/{id}", h.Get)
	})

	It("answers 201 with the invite token", func() {
		school := "school-a"
		inviter := &identity.User{ID: "admin-a", Role: identity.RoleSchoolAdmin, SchoolID: &school}
		body, _ := json.Marshal(map[string]string{"email": "n@school.test", "firstName": "N", "lastName": "M", "role": "teacher"})
		req := httptest.NewRequest(http.MethodPost, "/schools/school-a/users/invite", bytes.NewReader(body))
		req = req.WithContext(internal.ContextWithUser(req.Context(), inviter))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(stub.gotSchool).To(Equal("school-a"))
		Expect(stub.gotActor).To(Equal(inviter))
		Expect(rec.Body.String()).To(ContainSubstring(`"inviteToken":"tok"`))
	})

	It("clamps pagination", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schools/school-a/users?limit=5000", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp user.ListResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Limit).To(Equal(200))
	})

	It("answers 404 for unknown users", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schools/school-a/users/nope", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
