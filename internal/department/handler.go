package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/transport"
)

type ServiceAPI interface {
	GetAllDepartments(ctx context.Context) ([]*Department, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetDepartments handles GET /api/departments
func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.GetAllDepartments(r.Context())
	if err != nil {
		h.Logger.Error("GetDepartments: failed to get departments", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "Failed to load departments")
		return
	}

	h.WriteJSON(w, http.StatusOK, internal.APIResponse{
		Success: true,
		Data:    departments,
	})
}
