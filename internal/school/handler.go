package school

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/transport"
	"github.com/amit1797/Eduadmin-sub000/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Onboard(ctx context.Context, dto OnboardDTO) (*OnboardResponse, error)
	List(ctx context.Context, limit, offset int) ([]*School, error)
	Get(ctx context.Context, id string) (*School, error)
	Modules(ctx context.Context, schoolID string) ([]ModuleStatus, error)
	SetModule(ctx context.Context, schoolID, module string, dto SetModuleDTO) (*ModuleStatus, error)
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

// List handles GET /schools
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r, 50, 200)
	schools, err := h.Service.List(r.Context(), limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"schools": schools,
		"limit":   limit,
		"offset":  offset,
	})
}

// Create handles POST /schools
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto OnboardDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, err := h.Service.Onboard(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// Get handles GET /schools/{schoolId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.Get(r.Context(), chi.URLParam(r, access.SchoolIDParam))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s)
}

// Modules handles GET /schools/{schoolId}/modules
func (h *Handler) Modules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.Service.Modules(r.Context(), chi.URLParam(r, access.SchoolIDParam))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

// SetModule handles PUT /schools/{schoolId}/modules/{module}
func (h *Handler) SetModule(w http.ResponseWriter, r *http.Request) {
	var dto SetModuleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	status, err := h.Service.SetModule(r.Context(), chi.URLParam(r, access.SchoolIDParam), chi.URLParam(r, "module"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, status)
}
