package audit

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
	ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]Entry, error)
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

type ListResponse struct {
	Entries []Entry `json:"entries"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// List handles GET /schools/{schoolId}/audit-logs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	schoolID := internal.SchoolIDFromContext(r.Context())
	if schoolID == "" {
		schoolID = chi.URLParam(r, access.SchoolIDParam)
	}
	limit, offset := h.Pagination(r, 50, 500)

	entries, err := h.Service.ListBySchool(r.Context(), schoolID, limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Entries: entries, Limit: limit, Offset: offset})
}
