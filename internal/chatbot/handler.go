package chatbot

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/transport"
)

type ServiceAPI interface {
	Handle(ctx context.Context, actor *account.Actor, message string) (string, error)
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type Handler struct {
	service ServiceAPI
	transport.BaseHandler
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

// Chat godoc
// @Summary Dispatch a "!command" chat message for the caller's role
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatRequest true "chat message"
// @Success 200 {object} ChatResponse
// @Router /chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	actor, ok := account.ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	reply, err := h.service.Handle(r.Context(), actor, req.Message)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
