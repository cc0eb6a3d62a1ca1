package access_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/observability"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

// withUser stands in for the authentication middleware.
func withUser(u *identity.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u != nil {
				r = r.WithContext(internal.ContextWithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func decodeError(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body
}

var _ = Describe("Authorizer", func() {
	var (
		entitlements *mockEntitlements
		permissions  *mockPermissions
		metrics      *observability.Metrics
		authz        *access.Authorizer
		handlerRan   bool
		seenSchoolID string
		lg           *slog.Logger
	)

	newRouter := func(u *identity.User) *chi.Mux {
		r := chi.NewRouter()
		r.Use(withUser(u))
		ok := func(w http.ResponseWriter, r *http.Request) {
			handlerRan = true
			seenSchoolID = internal.SchoolIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}
		r.Route("/schools/{schoolId}", func(sr chi.Router) {
			sr.With(authz.RequireTenant()).Get("/", ok)
			sr.With(authz.Require(access.ModuleStudentManagement, access.PermissionRead)).Get("/students", ok)
			sr.With(authz.Require(access.ModuleStudentManagement, access.PermissionCreate)).Post("/students", ok)
		})
		r.With(authz.Require(access.ModuleUserManagement, access.PermissionCreate)).Post("/invites", ok)
		r.With(authz.RequireRole(identity.RoleSuperAdmin)).Get("/schools", ok)
		return r
	}

	do := func(u *identity.User, method, path, body string) *httptest.ResponseRecorder {
		var rd io.Reader
		if body != "" {
			rd = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, rd)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		newRouter(u).ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		handlerRan = false
		seenSchoolID = ""
		lg = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		entitlements = &mockEntitlements{enabled: map[string]bool{
			"school-a/student_management": true,
			"school-a/user_management":    true,
		}}
		permissions = &mockPermissions{}
		metrics = observability.NewMetrics(prometheus.NewRegistry())
		authz = access.NewAuthorizer(entitlements, permissions, metrics, lg)
	})

	It("lets a teacher read students of their school and exposes the school id", func() {
		rec := do(userFor(identity.RoleTeacher, "school-a"), http.MethodGet, "/schools/school-a/students", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(handlerRan).To(BeTrue())
		Expect(seenSchoolID).To(Equal("school-a"))
	})

	It("rejects a teacher reading another school with 403 and never runs the handler", func() {
		rec := do(userFor(identity.RoleTeacher, "school-a"), http.MethodGet, "/schools/school-b/students", "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(rec)).To(Equal(errorBody{Message: "Access denied to this school", Code: "CROSS_TENANT_ACCESS"}))
		Expect(handlerRan).To(BeFalse())
		Expect(entitlements.calls).To(BeZero())
		Expect(permissions.calls).To(BeZero())
	})

	It("rejects a disabled module even when the role holds the permission", func() {
		entitlements.enabled["school-a/student_management"] = false
		rec := do(userFor(identity.RoleSchoolAdmin, "school-a"), http.MethodGet, "/schools/school-a/students", "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(rec)).To(Equal(errorBody{Message: "Module student_management is not enabled for this school", Code: "MODULE_NOT_ENABLED"}))
		Expect(permissions.calls).To(BeZero())
	})

	It("rejects a missing permission", func() {
		rec := do(userFor(identity.RoleTeacher, "school-a"), http.MethodPost, "/schools/school-a/students", `{"firstName":"A"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(rec)).To(Equal(errorBody{Message: "Missing permission create on module student_management", Code: "PERMISSION_DENIED"}))
	})

	It("lets super_admin through every guard on any school", func() {
		rec := do(userFor(identity.RoleSuperAdmin, ""), http.MethodPost, "/schools/school-z/students", `{}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(entitlements.calls).To(BeZero())
		Expect(permissions.calls).To(BeZero())
	})

	It("reads the school id from the JSON body when the route has none", func() {
		rec := do(userFor(identity.RoleSchoolAdmin, "school-a"), http.MethodPost, "/invites", `{"schoolId":"school-a","email":"x@y.z"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(seenSchoolID).To(Equal("school-a"))
	})

	It("reads the school id from the query string as a last resort", func() {
		rec := do(userFor(identity.RoleSchoolAdmin, "school-a"), http.MethodPost, "/invites?schoolId=school-b", `{"email":"x@y.z"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(rec).Code).To(Equal("CROSS_TENANT_ACCESS"))
	})

	It("answers 400 when no school id can be found", func() {
		rec := do(userFor(identity.RoleSchoolAdmin, "school-a"), http.MethodPost, "/invites", `{"email":"x@y.z"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(rec)).To(Equal(errorBody{Message: "School ID is required", Code: "SCHOOL_ID_REQUIRED"}))
	})

	It("restricts role-gated routes", func() {
		rec := do(userFor(identity.RoleSchoolAdmin, "school-a"), http.MethodGet, "/schools", "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(rec)).To(Equal(errorBody{Message: "Insufficient role", Code: "FORBIDDEN_ROLE"}))

		rec = do(userFor(identity.RoleSuperAdmin, ""), http.MethodGet, "/schools", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("answers 401 when no user is in the context", func() {
		rec := do(nil, http.MethodGet, "/schools/school-a/", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("counts decisions per guard and outcome", func() {
		do(userFor(identity.RoleTeacher, "school-a"), http.MethodGet, "/schools/school-a/students", "")
		do(userFor(identity.RoleTeacher, "school-a"), http.MethodGet, "/schools/school-b/students", "")

		Expect(promtestutil.ToFloat64(metrics.AccessDecisionsTotal.WithLabelValues("tenant", observability.OutcomeAllow))).To(Equal(1.0))
		Expect(promtestutil.ToFloat64(metrics.AccessDecisionsTotal.WithLabelValues("tenant", observability.OutcomeDeny))).To(Equal(1.0))
		Expect(promtestutil.ToFloat64(metrics.AccessDecisionsTotal.WithLabelValues("permission", observability.OutcomeAllow))).To(Equal(1.0))
	})
})
