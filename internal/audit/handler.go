package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/campushq/internship-portal/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, limit, offset int) (*ListResult, error)
}

type Handler struct {
	service ServiceAPI
	transport.BaseHandler
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List audit log entries, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "page size" default(50)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} ListResult
// @Router /admin/audit-logs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
