package student

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/transport"
	"github.com/amit1797/Eduadmin-sub000/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, schoolID string, dto CreateDTO) (*Student, error)
	Get(ctx context.Context, schoolID, id string) (*Student, error)
	List(ctx context.Context, schoolID string, limit, offset int) ([]*Student, error)
	Update(ctx context.Context, schoolID, id string, dto UpdateDTO) (*Student, error)
	Delete(ctx context.Context, schoolID, id string) error
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

// List handles GET /schools/{schoolId}/students
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r, 50, 200)
	students, err := h.Service.List(r.Context(), schoolID(r), limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Students: students, Limit: limit, Offset: offset})
}

// Create handles POST /schools/{schoolId}/students
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	s, err := h.Service.Create(r.Context(), schoolID(r), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, s)
}

// Get handles GET /schools/{schoolId}/students/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.Get(r.Context(), schoolID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s)
}

// Update handles PUT /schools/{schoolId}/students/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	s, err := h.Service.Update(r.Context(), schoolID(r), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s)
}

// Delete handles DELETE /schools/{schoolId}/students/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), schoolID(r), chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func schoolID(r *http.Request) string {
	if id := internal.SchoolIDFromContext(r.Context()); id != "" {
		return id
	}
	return chi.URLParam(r, access.SchoolIDParam)
}
