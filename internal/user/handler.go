package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/transport"
	"github.com/amit1797/Eduadmin-sub000/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Invite(ctx context.Context, actor *identity.User, schoolID string, dto InviteDTO) (*InviteResponse, error)
	ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]*identity.User, error)
	GetByID(ctx context.Context, schoolID, id string) (*identity.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Invite handles POST /schools/{schoolId}/users/invite
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var dto InviteDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	actor, _ := internal.UserFromContext(r.Context())
	resp, err := h.Service.Invite(r.Context(), actor, schoolID(r), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// List handles GET /schools/{schoolId}/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r, 50, 200)

	users, err := h.Service.ListBySchool(r.Context(), schoolID(r), limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{Users: users, Limit: limit, Offset: offset})
}

// Get handles GET /schools/{schoolId}/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetByID(r.Context(), schoolID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func schoolID(r *http.Request) string {
	if id := internal.SchoolIDFromContext(r.Context()); id != "" {
		return id
	}
	return chi.URLParam(r, access.SchoolIDParam)
}
