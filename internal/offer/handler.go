package offer

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

// ServiceAPI is the offer surface the HTTP layer depends on.
type ServiceAPI interface {
	ListForActor(ctx context.Context, actor *account.Actor) ([]*Offer, error)
	Create(ctx context.Context, actor *account.Actor, dto CreateOfferDTO) (*Offer, error)
	GetByID(ctx context.Context, actor *account.Actor, id int64) (*Offer, error)
	FacultyApprove(ctx context.Context, actor *account.Actor, id int64) (*Offer, error)
	AdminApprove(ctx context.Context, actor *account.Actor, id int64) (*Offer, error)
	Reject(ctx context.Context, actor *account.Actor, id int64, dto RejectDTO) (*Offer, error)
}

type Handler struct {
	service ServiceAPI
	transport.BaseHandler
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List offers visible to the caller's role
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Offer
// @Router /offers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	offers, err := h.service.ListForActor(r.Context(), actor)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, offers)
}

// Create godoc
// @Summary Create an offer, entering the approval workflow
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOfferDTO true "offer payload"
// @Success 200 {object} Offer
// @Router /offers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	var dto CreateOfferDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	off, err := h.service.Create(r.Context(), actor, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, off)
}

// Get godoc
// @Summary Get one offer with its recruiter
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path int true "offer id"
// @Success 200 {object} Offer
// @Router /offers/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.withOffer(w, r, h.service.GetByID)
}

// FacultyApprove godoc
// @Summary Record the faculty approval decision
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path int true "offer id"
// @Success 200 {object} Offer
// @Router /offers/{id}/faculty [patch]
func (h *Handler) FacultyApprove(w http.ResponseWriter, r *http.Request) {
	h.withOffer(w, r, h.service.FacultyApprove)
}

// AdminApprove godoc
// @Summary Record the admin approval decision
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path int true "offer id"
// @Success 200 {object} Offer
// @Router /offers/{id}/admin [patch]
func (h *Handler) AdminApprove(w http.ResponseWriter, r *http.Request) {
	h.withOffer(w, r, h.service.AdminApprove)
}

// Reject godoc
// @Summary Reject an offer with a mandatory reason
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "offer id"
// @Param request body RejectDTO true "rejection payload"
// @Success 200 {object} Offer
// @Router /offers/{id}/reject [patch]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, internal.NewValidationError("invalid offer id", internal.ErrCodeInvalidFormat))
		return
	}

	var dto RejectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	off, err := h.service.Reject(r.Context(), actor, id, dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, off)
}

func (h *Handler) withOffer(w http.ResponseWriter, r *http.Request, op func(context.Context, *account.Actor, int64) (*Offer, error)) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, internal.NewValidationError("invalid offer id", internal.ErrCodeInvalidFormat))
		return
	}

	off, err := op(r.Context(), actor, id)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, off)
}
