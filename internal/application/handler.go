package application

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/transport"
)

// ServiceAPI is the application surface the HTTP layer depends on.
type ServiceAPI interface {
	Create(ctx context.Context, actor *account.Actor, dto CreateApplicationDTO) (*Application, error)
	ListByOffer(ctx context.Context, actor *account.Actor, offerID int64) ([]*Application, error)
	FacultyApprove(ctx context.Context, actor *account.Actor, id int64) (*Application, error)
	AdminApprove(ctx context.Context, actor *account.Actor, id int64) (*Application, error)
	Reject(ctx context.Context, actor *account.Actor, id int64) (*Application, error)
}

type Handler struct {
	service ServiceAPI
	transport.BaseHandler
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary Submit an application to an offer
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateApplicationDTO true "application payload"
// @Success 201 {object} Application
// @Router /applications [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	var dto CreateApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	app, err := h.service.Create(r.Context(), actor, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, app)
}

// ListByOffer godoc
// @Summary List an offer's applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param offerId path int true "offer id"
// @Success 200 {array} Application
// @Router /applications/offer/{offerId} [get]
func (h *Handler) ListByOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	offerID, err := strconv.ParseInt(chi.URLParam(r, "offerId"), 10, 64)
	if err != nil {
		h.WriteError(w, internal.NewValidationError("invalid offer id", internal.ErrCodeInvalidFormat))
		return
	}

	apps, err := h.service.ListByOffer(r.Context(), actor, offerID)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, apps)
}

// FacultyApprove godoc
// @Summary Record the faculty decision on an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "application id"
// @Success 200 {object} Application
// @Router /applications/{id}/approve/faculty [patch]
func (h *Handler) FacultyApprove(w http.ResponseWriter, r *http.Request) {
	h.withApplication(w, r, h.service.FacultyApprove)
}

// AdminApprove godoc
// @Summary Record the admin decision on an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "application id"
// @Success 200 {object} Application
// @Router /applications/{id}/approve/admin [patch]
func (h *Handler) AdminApprove(w http.ResponseWriter, r *http.Request) {
	h.withApplication(w, r, h.service.AdminApprove)
}

// Reject godoc
// @Summary Reject an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "application id"
// @Success 200 {object} Application
// @Router /applications/{id}/reject [patch]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.withApplication(w, r, h.service.Reject)
}

func (h *Handler) withApplication(w http.ResponseWriter, r *http.Request, op func(context.Context, *account.Actor, int64) (*Application, error)) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, internal.NewValidationError("invalid application id", internal.ErrCodeInvalidFormat))
		return
	}

	app, err := op(r.Context(), actor, id)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}
