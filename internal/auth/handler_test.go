package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal"
	schoolDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/school"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func decodeError(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
	return body
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler  *Handler
		mockRepo *mockUserRepository
		tokenGen *TokenService
		protect  http.Handler
		seen     *identity.User
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = newTestTokenService()
		schools := &mockSchoolLookup{schools: map[string]*schoolDatamodel.School{
			"school-a": {ID: "school-a", Code: "GREEN", Status: "active"},
		}}
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler = NewHandler(NewService(mockRepo, schools, tokenGen, bcrypt.MinCost, lg))

		seen = nil
		protect = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = internal.UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	})

	bearer := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}

	ginkgo.Describe("AuthMiddleware", func() {
		ginkgo.It("should answer 401 MISSING_TOKEN without a bearer header", func() {
			rec := httptest.NewRecorder()
			protect.ServeHTTP(rec, bearer(""))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			body := decodeError(rec)
			gomega.Expect(body.Code).To(gomega.Equal("MISSING_TOKEN"))
			gomega.Expect(body.Message).To(gomega.Equal("Access token required"))
			gomega.Expect(seen).To(gomega.BeNil())
		})

		ginkgo.It("should answer 401 TOKEN_EXPIRED for an expired access token", func() {
			tokenGen.now = func() time.Time { return time.Now().Add(-time.Hour) }
			pair, _ := tokenGen.IssueAccessAndRefresh(&identity.User{ID: "1", Email: "teacher@example.com", Role: identity.RoleTeacher})
			tokenGen.now = time.Now

			rec := httptest.NewRecorder()
			protect.ServeHTTP(rec, bearer(pair.AccessToken))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeError(rec).Code).To(gomega.Equal("TOKEN_EXPIRED"))
		})

		ginkgo.It("should answer 403 INVALID_TOKEN for a malformed token", func() {
			rec := httptest.NewRecorder()
			protect.ServeHTTP(rec, bearer("abc.def.ghi"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			body := decodeError(rec)
			gomega.Expect(body.Code).To(gomega.Equal("INVALID_TOKEN"))
			gomega.Expect(body.Message).To(gomega.Equal("Invalid token"))
		})

		ginkgo.It("should answer 403 for a refresh token presented as access token", func() {
			pair, _ := tokenGen.IssueAccessAndRefresh(&identity.User{ID: "1", Email: "teacher@example.com", Role: identity.RoleTeacher})

			rec := httptest.NewRecorder()
			protect.ServeHTTP(rec, bearer(pair.RefreshToken))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should answer 401 when the account was deactivated", func() {
			pair, _ := tokenGen.IssueAccessAndRefresh(&identity.User{ID: "3", Email: "inactive@example.com", Role: identity.RoleTeacher})

			rec := httptest.NewRecorder()
			protect.ServeHTTP(rec, bearer(pair.AccessToken))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeError(rec).Code).To(gomega.Equal("USER_INACTIVE_OR_MISSING"))
		})

		ginkgo.It("should attach the stored user, not the token claims", func() {
			pair, _ := tokenGen.IssueAccessAndRefresh(&identity.User{ID: "1", Email: "stale@example.com", Role: identity.RoleTeacher})

			rec := httptest.NewRecorder()
			protect.ServeHTTP(rec, bearer(pair.AccessToken))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen).ToNot(gomega.BeNil())
			gomega.Expect(seen.Email).To(gomega.Equal("teacher@example.com"))
			gomega.Expect(*seen.SchoolID).To(gomega.Equal("school-a"))
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return a token pair and the user", func() {
			payload, _ := json.Marshal(map[string]string{"email": "teacher@example.com", "password": "correct_password", "schoolCode": "GREEN"})
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var resp map[string]interface{}
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp).To(gomega.HaveKey("accessToken"))
			gomega.Expect(resp).To(gomega.HaveKey("refreshToken"))
			gomega.Expect(resp["expiresIn"]).To(gomega.BeNumerically("==", 900))
			gomega.Expect(resp["user"]).To(gomega.HaveKeyWithValue("email", "teacher@example.com"))
			gomega.Expect(resp["user"]).ToNot(gomega.HaveKey("passwordHash"))
		})

		ginkgo.It("should answer 400 on an unreadable body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should answer 401 on bad credentials", func() {
			payload, _ := json.Marshal(map[string]string{"email": "teacher@example.com", "password": "wrong", "schoolCode": "GREEN"})
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeError(rec).Code).To(gomega.Equal("INVALID_CREDENTIALS"))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should answer 204", func() {
			rec := httptest.NewRecorder()
			handler.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		})
	})
})
