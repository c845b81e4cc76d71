package account

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/transport"
)

// ServiceAPI is the account surface the HTTP layer depends on.
type ServiceAPI interface {
	RequestSignup(ctx context.Context, dto SignupDTO) error
	VerifyOTP(ctx context.Context, dto VerifyOTPDTO) (*AuthResponse, error)
	ResendOTP(ctx context.Context, dto ResendOTPDTO) error
	ForgotPassword(ctx context.Context, dto ResendOTPDTO) error
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) error
	Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error)
	ListPendingAccounts(ctx context.Context) ([]*Account, error)
	ApproveAccount(ctx context.Context, actorID, accountID int64) (*Account, error)
}

type Handler struct {
	service ServiceAPI
	transport.BaseHandler
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

// Signup godoc
// @Summary Register an account and receive a verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupDTO true "signup payload"
// @Success 200 {object} map[string]string
// @Router /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	if err := h.service.RequestSignup(r.Context(), dto); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to email"})
}

// VerifyOTP godoc
// @Summary Verify the signup OTP and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPDTO true "verification payload"
// @Success 200 {object} AuthResponse
// @Router /auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var dto VerifyOTPDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	resp, err := h.service.VerifyOTP(r.Context(), dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// ResendOTP godoc
// @Summary Resend the verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResendOTPDTO true "resend payload"
// @Success 200 {object} map[string]string
// @Router /auth/resend-otp [post]
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var dto ResendOTPDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	if err := h.service.ResendOTP(r.Context(), dto); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to email"})
}

// ForgotPassword godoc
// @Summary Send a password reset OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResendOTPDTO true "reset request payload"
// @Success 200 {object} map[string]string
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResendOTPDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), dto); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to email"})
}

// ResetPassword godoc
// @Summary Reset the password using the emailed OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordDTO true "reset payload"
// @Success 200 {object} map[string]string
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	if err := h.service.ResetPassword(r.Context(), dto); err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Login godoc
// @Summary Authenticate a verified account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginDTO true "credentials"
// @Success 200 {object} AuthResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFormat))
		return
	}

	resp, err := h.service.Login(r.Context(), dto)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// ListPendingAccounts godoc
// @Summary List accounts awaiting admin approval
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Account
// @Router /admin/pending-users [get]
func (h *Handler) ListPendingAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListPendingAccounts(r.Context())
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, accounts)
}

// ApproveAccount godoc
// @Summary Activate a pending account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "account id"
// @Success 200 {object} Account
// @Router /admin/approve-user/{id} [post]
func (h *Handler) ApproveAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		h.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, internal.NewValidationError("invalid account id", internal.ErrCodeInvalidFormat))
		return
	}

	acc, err := h.service.ApproveAccount(r.Context(), actor.ID, id)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}
